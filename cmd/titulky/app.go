package main

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/archive"
	"github.com/titulkysubs/titulkysubs/internal/browser"
	"github.com/titulkysubs/titulkysubs/internal/cache"
	"github.com/titulkysubs/titulkysubs/internal/client"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/metadata"
	"github.com/titulkysubs/titulkysubs/internal/pipeline"
	"github.com/titulkysubs/titulkysubs/internal/resolver"
	"github.com/titulkysubs/titulkysubs/internal/search"
	"github.com/titulkysubs/titulkysubs/internal/session"
	"github.com/titulkysubs/titulkysubs/internal/storage"
)

// app holds the wired acquisition stack shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	sessions *session.LoginStore
	browser  *browser.Fetcher
	searcher *search.Searcher
	resolver *resolver.Resolver
	dir      *storage.Dir
	lookup   metadata.Lookup
	pipeline *pipeline.Pipeline
}

func newApp(cfg *config.Config) (*app, error) {
	logger := config.GetLogger()

	dir, err := storage.NewDir(cfg.Subtitles.Dir, publicBaseURL(cfg), cfg.Subtitles.Route)
	if err != nil {
		return nil, err
	}

	sessions := session.NewLoginStore(client.NewLoginClient(cfg), session.OptionsFromConfig(cfg))

	var fetcher client.Fetcher = client.NewHTTPFetcher(client.NewHTTPClient(cfg))
	var rendered *browser.Fetcher
	if cfg.Browser.Enabled {
		rendered = browser.NewFetcher(cfg, fetcher)
		fetcher = rendered
		logger.Info().Str("exec_path", cfg.Browser.ExecPath).Msg("Rendering upstream pages with headless Chrome")
	}

	matcher := search.NewMatcher(cfg.Site.Origin, search.MatcherConfigFromConfig(cfg))
	searcher := search.NewSearcher(fetcher, sessions, matcher, cfg.Site.Origin, cfg.Site.SearchParam)
	res := resolver.NewResolver(fetcher, sessions, archive.NewExtractor(), dir, resolver.OptionsFromConfig(cfg))

	metadataCache, err := cache.NewFromConfig(cfg, "metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}
	artifactCache, err := cache.NewFromConfig(cfg, cache.ArtifactGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact cache: %w", err)
	}

	omdb := metadata.NewOMDbClient(client.NewHTTPClient(cfg), cfg.Metadata.OMDbURL, cfg.Metadata.OMDbAPIKey)
	lookup := metadata.NewCachedLookup(omdb, metadataCache)

	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		browser:  rendered,
		searcher: searcher,
		resolver: res,
		dir:      dir,
		lookup:   lookup,
		pipeline: pipeline.New(lookup, searcher, res, dir, artifactCache, cfg.Pipeline.MaxCandidates),
	}, nil
}

// Close releases the browser, if one was started.
func (a *app) Close() {
	if a.browser != nil {
		a.browser.Close()
	}
}

// publicBaseURL returns the configured subtitle base URL, or
// http://<first non-loopback IPv4>:<port>.
func publicBaseURL(cfg *config.Config) string {
	if cfg.Subtitles.BaseURL != "" {
		return cfg.Subtitles.BaseURL
	}
	return fmt.Sprintf("http://%s:%d", localIP(), cfg.Server.Port)
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
