package database

import (
	"context"
	"fmt"

	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DefaultThemes are created on migrate when missing. Existing rows keep
// their description.
var DefaultThemes = []model.Theme{
	{Name: "Arte", Description: "Pittura, scultura e architettura italiana"},
	{Name: "Storia", Description: "Eventi e personaggi della storia d'Italia"},
	{Name: "Cucina", Description: "Piatti, ingredienti e tradizioni gastronomiche"},
	{Name: "Musica", Description: "Opera, canzone d'autore e musica popolare"},
	{Name: "Letteratura", Description: "Autori e opere della letteratura italiana"},
	{Name: "Cinema", Description: "Registi, attori e film italiani"},
	{Name: "Geografia", Description: "Regioni, città e paesaggi"},
	{Name: "Tradizioni", Description: "Feste, usanze e dialetti locali"},
}

func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

// SeedThemes makes sure every default theme exists.
func SeedThemes(ctx context.Context, themes repository.ThemeRepository) error {
	for _, t := range DefaultThemes {
		theme := t
		if err := themes.EnsureByName(ctx, &theme); err != nil {
			return fmt.Errorf("seed theme %q: %w", t.Name, err)
		}
	}
	log.Info().Int("count", len(DefaultThemes)).Msg("Default themes ensured")
	return nil
}
