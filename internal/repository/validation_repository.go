package repository

import (
	"context"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

type ValidationRepository interface {
	WithTx(tx *gorm.DB) ValidationRepository
	Create(ctx context.Context, validation *model.Validation) error
	Exists(ctx context.Context, answerID, validatorID uint) (bool, error)
	FindByAnswer(ctx context.Context, answerID uint) ([]model.Validation, error)
}

type validationRepository struct {
	db *gorm.DB
}

func NewValidationRepository(db *gorm.DB) ValidationRepository {
	return &validationRepository{db: db}
}

func (r *validationRepository) WithTx(tx *gorm.DB) ValidationRepository {
	return &validationRepository{db: tx}
}

func (r *validationRepository) Create(ctx context.Context, validation *model.Validation) error {
	return r.db.WithContext(ctx).Omit("Answer").Create(validation).Error
}

func (r *validationRepository) Exists(ctx context.Context, answerID, validatorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Validation{}).
		Where("answer_id = ? AND validator_id = ?", answerID, validatorID).
		Count(&count).Error
	return count > 0, err
}

func (r *validationRepository) FindByAnswer(ctx context.Context, answerID uint) ([]model.Validation, error) {
	var validations []model.Validation
	err := r.db.WithContext(ctx).
		Where("answer_id = ?", answerID).
		Order("created_at asc").Order("id asc").
		Find(&validations).Error
	if err != nil {
		return nil, err
	}
	return validations, nil
}
