package cli

import (
	"context"

	"github.com/culturallm/backend/config"
	"github.com/culturallm/backend/database"
	"github.com/culturallm/backend/internal/logger"
	"github.com/culturallm/backend/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewMigrateCmd applies the schema and seeds the default themes.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed default themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Pretty)

			db, err := database.NewDatabase(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			return runMigrations(cmd.Context(), db)
		},
	}
}

func runMigrations(ctx context.Context, db *gorm.DB) error {
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return database.SeedThemes(ctx, repository.NewThemeRepository(db))
}
