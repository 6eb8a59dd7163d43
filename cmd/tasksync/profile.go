package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rpggio/tasksync/internal/config"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage principal profiles and their visibility roles",
	}
	cmd.AddCommand(profileSetCmd())
	cmd.AddCommand(profileListCmd())
	return cmd
}

func profileSetCmd() *cobra.Command {
	var role, name string

	cmd := &cobra.Command{
		Use:   "set <principal-id>",
		Short: "Create or replace a principal's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			profile := &identity.Profile{
				PrincipalID: args[0],
				Role:        role,
				DisplayName: name,
				UpdatedAt:   time.Now().UTC(),
			}
			if err := sqlite.NewProfileRepository(db).SetProfile(cmd.Context(), profile); err != nil {
				return fmt.Errorf("set profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", profile.PrincipalID, profile.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", identity.RoleMember, "visibility role (admin sees every owner's data)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			profiles, err := sqlite.NewProfileRepository(db).ListProfiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("list profiles: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRINCIPAL\tROLE\tNAME\tUPDATED")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.PrincipalID, p.Role, p.DisplayName, p.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
