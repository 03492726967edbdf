package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/titulkysubs/titulkysubs/internal/addon"
	"github.com/titulkysubs/titulkysubs/internal/config"
	grpcserver "github.com/titulkysubs/titulkysubs/internal/grpc"
	"github.com/titulkysubs/titulkysubs/internal/metrics"
	"github.com/titulkysubs/titulkysubs/internal/reporting"
	"github.com/titulkysubs/titulkysubs/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Stremio addon HTTP server and the gRPC API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, config.GetConfig())
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	flush, err := reporting.Init(cfg, version)
	if err != nil {
		logger.Warn().Err(err).Msg("Error reporting disabled")
	} else {
		defer flush()
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info().
		Str("version", version).
		Str("origin", cfg.Site.Origin).
		Str("subtitles_dir", a.dir.Root()).
		Str("base_url", publicBaseURL(cfg)).
		Int("server_port", cfg.Server.Port).
		Int("grpc_port", cfg.Server.GRPCPort).
		Bool("credentials", a.sessions.HasCredentials()).
		Msg("Application started with configuration")

	if cfg.Metadata.OMDbAPIKey == "" {
		logger.Warn().Msg("No OMDb API key configured (OMDB_API_KEY), subtitle lookups will return empty results")
	}

	if a.sessions.HasCredentials() {
		loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if _, err := a.sessions.Login(loginCtx); err != nil {
			logger.Warn().Err(err).Msg("Initial login failed, continuing anonymously")
		}
		cancel()
	} else {
		logger.Warn().Msg("No titulky.com credentials configured, downloads may be limited")
	}

	if cfg.Session.WarmSchedule != "" {
		warmer, err := session.NewWarmer(a.sessions, cfg.Session.WarmSchedule)
		if err != nil {
			return err
		}
		warmer.Start()
		defer warmer.Stop()
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer shutdownHTTP(logger, "metrics", metricsServer)
	}

	errCh := make(chan error, 2)

	if cfg.Server.GRPCPort != 0 {
		grpcServer, err := startGRPC(logger, cfg, a, errCh)
		if err != nil {
			return err
		}
		defer grpcServer.GracefulStop()
	}

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := addon.NewHandler(a.pipeline, a.dir, addon.DefaultManifest(version))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("address", httpServer.Addr).Str("manifest", publicBaseURL(cfg)+"/manifest.json").Msg("Starting addon HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("addon server: %w", err)
		}
	}()
	defer shutdownHTTP(logger, "addon", httpServer)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		return err
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}

func startGRPC(logger zerolog.Logger, cfg *config.Config, a *app, errCh chan<- error) (*grpc.Server, error) {
	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC listener on %s: %w", address, err)
	}

	grpcServer := grpcserver.NewGRPCServer(a.pipeline)
	go func() {
		logger.Info().Str("address", address).Msg("Starting gRPC server")
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	return grpcServer, nil
}

func shutdownHTTP(logger zerolog.Logger, name string, srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Str("server", name).Msg("Failed to shutdown server")
	}
}
