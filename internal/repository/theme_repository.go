package repository

import (
	"context"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

type ThemeRepository interface {
	FindAll(ctx context.Context) ([]model.Theme, error)
	FindByID(ctx context.Context, id uint) (*model.Theme, error)
	FindRandom(ctx context.Context) (*model.Theme, error)
	// EnsureByName inserts the theme unless one with the same name exists.
	EnsureByName(ctx context.Context, theme *model.Theme) error
}

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) FindAll(ctx context.Context) ([]model.Theme, error) {
	var themes []model.Theme
	if err := r.db.WithContext(ctx).Order("name asc").Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *themeRepository) FindByID(ctx context.Context, id uint) (*model.Theme, error) {
	var theme model.Theme
	if err := r.db.WithContext(ctx).First(&theme, id).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

// FindRandom uses RANDOM(), understood by both postgres and sqlite.
func (r *themeRepository) FindRandom(ctx context.Context) (*model.Theme, error) {
	var theme model.Theme
	if err := r.db.WithContext(ctx).Order("RANDOM()").Take(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *themeRepository) EnsureByName(ctx context.Context, theme *model.Theme) error {
	return r.db.WithContext(ctx).
		Where(model.Theme{Name: theme.Name}).
		Attrs(model.Theme{Description: theme.Description}).
		FirstOrCreate(theme).Error
}
