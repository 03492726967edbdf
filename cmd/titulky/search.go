package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

func newSearchCommand() *cobra.Command {
	var (
		year  string
		imdb  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search [title]",
		Short: "Show ranked titulky.com search candidates",
		Args: func(cmd *cobra.Command, args []string) error {
			if imdb != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(config.GetConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			title := strings.Join(args, " ")
			if imdb != "" {
				movie, err := a.lookup.Lookup(ctx, imdb)
				if err != nil {
					return err
				}
				title, year = movie.Title, movie.Year
			}

			candidates, err := a.searcher.Search(ctx, title, year)
			if err != nil {
				return err
			}
			if limit > 0 && len(candidates) > limit {
				candidates = candidates[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Search: %s\n", a.searcher.SearchURL(title))
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No candidates")
				return nil
			}
			rows := make([][]string, 0, len(candidates))
			for i, c := range candidates {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(c.Score),
					c.SourceRule,
					c.DisplayText,
					c.TargetURL,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Score", "Rule", "Text", "URL"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "Release year used for ranking")
	cmd.Flags().StringVar(&imdb, "imdb", "", "Look up title and year for this IMDb id first")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n candidates")

	return cmd
}
