package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamdb/database"
	"yamdb/database/seed"
	"yamdb/internal/config"
	"yamdb/internal/logger"
)

// importCmd loads the CSV fixtures straight into the database. It reads the
// same environment as the API server.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV fixtures into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.SeedDataDir = dir
		}

		zl, err := logger.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()

		db, err := database.ConnectDB(cfg, zl)
		if err != nil {
			return err
		}
		defer database.Close(db)

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}

		results, runErr := seed.New(sqlDB, "pgx", cfg.SeedDataDir, zl).Run(cmd.Context())
		printImportReport(results)
		if runErr != nil {
			color.Red("✗ %v", runErr)
			return fmt.Errorf("import aborted")
		}
		color.Green("✓ Import finished")
		return nil
	},
}

func printImportReport(results []seed.TableResult) {
	for _, r := range results {
		if r.Skipped {
			color.Yellow("- %-12s already has data, clear the table to reload it", r.Table)
			continue
		}
		color.Green("✓ %-12s %d rows from %s", r.Table, r.Rows, r.File)
	}
}

func init() {
	importCmd.Flags().String("dir", "", "Directory holding the fixture CSV files (default $SEED_DATA_DIR)")
}
