package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driverly/driverly/cmd/cli/root"
	"github.com/driverly/driverly/internal/auth"
	"github.com/driverly/driverly/internal/config"
	"github.com/driverly/driverly/internal/db"
	"github.com/driverly/driverly/internal/repo"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(seedCmd())
}

// seedCmd provisions accounts straight against the database, without going
// through the API. Useful for bootstrapping the first admin.
func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision accounts from a YAML seed file",
		Long:  "Reads a YAML file of accounts and creates any that do not exist yet. Database connection settings come from the usual DB_* environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			conn, err := db.Connect(cmd.Context(), cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close()

			if err := auth.SeedFromFile(cmd.Context(), repo.NewUserRepo(conn), file); err != nil {
				return err
			}
			fmt.Println("seed applied")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "path to the YAML seed file")

	return cmd
}
