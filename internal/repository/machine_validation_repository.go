package repository

import (
	"context"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

type MachineValidationRepository interface {
	// CreateBatch inserts all rows or none.
	CreateBatch(ctx context.Context, validations []*model.MachineValidation) error
	FindByAnswer(ctx context.Context, answerID uint) ([]model.MachineValidation, error)
}

type machineValidationRepository struct {
	db *gorm.DB
}

func NewMachineValidationRepository(db *gorm.DB) MachineValidationRepository {
	return &machineValidationRepository{db: db}
}

func (r *machineValidationRepository) CreateBatch(ctx context.Context, validations []*model.MachineValidation) error {
	if len(validations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range validations {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *machineValidationRepository) FindByAnswer(ctx context.Context, answerID uint) ([]model.MachineValidation, error) {
	var validations []model.MachineValidation
	err := r.db.WithContext(ctx).
		Where("answer_id = ?", answerID).
		Order("id asc").
		Find(&validations).Error
	if err != nil {
		return nil, err
	}
	return validations, nil
}
