package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/titulkysubs/titulkysubs/internal/client"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/session"
)

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check the configured titulky.com credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			store := session.NewLoginStore(client.NewLoginClient(cfg), session.OptionsFromConfig(cfg))
			if !store.HasCredentials() {
				return errors.New("no credentials configured: set TITULKY_USERNAME and TITULKY_PASSWORD")
			}

			sess, err := store.Login(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in, session valid until %s\n", sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
