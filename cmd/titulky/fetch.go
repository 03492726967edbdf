package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
)

func newFetchCommand() *cobra.Command {
	var (
		pageURL string
		title   string
		quiet   bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [imdb-id]",
		Short: "Acquire a subtitle for a movie and store it locally",
		Long: "Acquire a subtitle for an IMDb id through the full pipeline, " +
			"or resolve a single titulky.com detail page with --page.",
		Args: func(cmd *cobra.Command, args []string) error {
			if pageURL != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(config.GetConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			if !quiet {
				a.resolver.WithSleep(countdownSleep(cmd.ErrOrStderr()))
			}

			var artifact *models.SubtitleArtifact
			cached := false
			if pageURL != "" {
				if title == "" {
					title = "subtitle"
				}
				artifact, err = a.resolver.Resolve(ctx, pageURL, title)
			} else {
				artifact, cached, err = a.pipeline.Acquire(ctx, strings.TrimSpace(args[0]))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(models.NewSubtitlesResponse(artifact))
			}
			fmt.Fprintln(out, renderArtifact(artifact, a.dir.Path(artifact.Filename), cached))
			return nil
		},
	}

	cmd.Flags().StringVar(&pageURL, "page", "", "Resolve this titulky.com detail page instead of searching")
	cmd.Flags().StringVar(&title, "title", "", "Title used to name the stored file with --page")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not render countdown progress")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the addon subtitles response as JSON")

	return cmd
}

func renderArtifact(artifact *models.SubtitleArtifact, path string, cached bool) string {
	source := "downloaded"
	if cached {
		source = "cached"
	}
	return renderTable(
		[]string{"Field", "Value"},
		[][]string{
			{"ID", artifact.ID},
			{"Strategy", artifact.Strategy},
			{"Language", artifact.Lang},
			{"File", path},
			{"URL", artifact.URL},
			{"Source", source},
		},
		nil,
	)
}
