package main

import (
	"github.com/spf13/cobra"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

func newRootCommand() *cobra.Command {
	var baseURL string

	rootCmd := &cobra.Command{
		Use:           "titulky",
		Short:         "Czech subtitles from titulky.com for Stremio",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if baseURL != "" {
				config.GetConfig().Subtitles.BaseURL = baseURL
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Public base URL of stored subtitles (defaults to http://<local ip>:<port>)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newLoginCommand())

	return rootCmd
}
