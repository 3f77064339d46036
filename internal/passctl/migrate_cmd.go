package passctl

import (
	"errors"

	"github.com/spf13/cobra"

	"gatepass/internal/platform/config"
	"gatepass/internal/platform/database"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			pool, err := database.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			if pool == nil {
				return errors.New("DATABASE_URL is required")
			}
			defer func() { _ = pool.Close() }()

			if !statusOnly {
				if err := database.RunMigrations(pool.DB()); err != nil {
					return err
				}
			}
			version, err := database.MigrationVersion(pool.DB())
			if err != nil {
				return err
			}
			return render(cmd, map[string]int64{"version": version}, field{"SCHEMA VERSION", version})
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only report the current schema version")

	return cmd
}
