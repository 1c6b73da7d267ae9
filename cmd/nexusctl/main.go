// Command nexusctl administers a School Nexus deployment: schema migrations, user
// accounts and offline exports.
package main

import (
	"fmt"
	"os"

	"github.com/neptgadgets/school-nexus-final-sub000/app/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nexusctl",
		Short:         "Administer a School Nexus deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db-driver", "", "database driver, postgres or sqlite3 (overrides NEXUS_DB_DRIVER)")
	root.PersistentFlags().String("db-dsn", "", "database DSN (overrides NEXUS_DB_DSN)")
	config.Conf.BindPFlag("db_driver", root.PersistentFlags().Lookup("db-driver"))
	config.Conf.BindPFlag("db_dsn", root.PersistentFlags().Lookup("db-dsn"))

	root.AddCommand(newMigrateCmd(), newAddUserCmd(), newExportCmd())
	return root
}

// connect initialises config and the database for one command run.
func connect() (*config.Config, func(), error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, nil, err
	}
	return cfg, func() {
		cfg.DB.Close()
		cfg.Log.Sync()
	}, nil
}
