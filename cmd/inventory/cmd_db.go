package main

import (
	"fmt"

	"go-inventory-ledger/internal/server"

	"github.com/spf13/cobra"
)

// inventory migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.close()

		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	},
}

// inventory seed: default privileges, roles and the admin account.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed privileges, roles and the admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.close()

		if err := server.Seed(cmd.Context(), rt.db, rt.cfg.Auth, rt.log.Named("seed")); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeding complete.")
		return nil
	},
}
