package main

import (
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables, optionally seeding demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeFn, err := connect()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := database.RunMigrations(cfg.DB, cfg.Log); err != nil {
				return err
			}
			if seed {
				return database.SeedDemoData(cfg.DB, cfg.Log)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the demo schools, users and records")
	return cmd
}
