package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every embedded *.up.sql file that is not yet
// recorded in schema_migrations, in file name order. Each file runs in
// its own transaction together with its bookkeeping row.
func RunMigrations(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version text PRIMARY KEY)`).Error; err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".up.sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var exists bool
		if err := db.WithContext(ctx).
			Raw(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`, name).
			Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			continue
		}

		b, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(b)).Error; err != nil {
				return err
			}
			return tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, name).Error
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		logger.Info("migration applied", zap.String("version", name))
	}
	return nil
}
