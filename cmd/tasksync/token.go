package main

import (
	"fmt"

	"github.com/rpggio/tasksync/internal/config"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "token <principal-id>",
		Short: "Issue a bearer token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if err := cfg.RequireSecret(); err != nil {
				return err
			}
			tokens, err := identity.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(identity.Principal{ID: args[0], Email: email, DisplayName: name})
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	return cmd
}
