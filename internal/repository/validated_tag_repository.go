package repository

import (
	"context"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

type ValidatedTagRepository interface {
	Exists(ctx context.Context, tag *model.ValidatedTag) (bool, error)
	Create(ctx context.Context, tag *model.ValidatedTag) error
	// FindForValidator returns the user's rows on questions where they validated an answer.
	FindForValidator(ctx context.Context, userID uint) ([]model.ValidatedTag, error)
	// FindForAuthor returns the user's rows on questions they answered themselves.
	FindForAuthor(ctx context.Context, userID uint) ([]model.ValidatedTag, error)
}

type validatedTagRepository struct {
	db *gorm.DB
}

func NewValidatedTagRepository(db *gorm.DB) ValidatedTagRepository {
	return &validatedTagRepository{db: db}
}

func (r *validatedTagRepository) Exists(ctx context.Context, tag *model.ValidatedTag) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ValidatedTag{}).
		Where("user_id = ? AND question_id = ? AND tag = ? AND score = ?",
			tag.UserID, tag.QuestionID, tag.Tag, tag.Score).
		Count(&count).Error
	return count > 0, err
}

func (r *validatedTagRepository) Create(ctx context.Context, tag *model.ValidatedTag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *validatedTagRepository) FindForValidator(ctx context.Context, userID uint) ([]model.ValidatedTag, error) {
	validated := r.db.Model(&model.Validation{}).
		Select("answers.question_id").
		Joins("JOIN answers ON answers.id = validations.answer_id").
		Where("validations.validator_id = ?", userID)
	return r.findScoped(ctx, userID, validated)
}

func (r *validatedTagRepository) FindForAuthor(ctx context.Context, userID uint) ([]model.ValidatedTag, error) {
	answered := r.db.Model(&model.Answer{}).Select("question_id").Where("user_id = ?", userID)
	return r.findScoped(ctx, userID, answered)
}

func (r *validatedTagRepository) findScoped(ctx context.Context, userID uint, questionIDs *gorm.DB) ([]model.ValidatedTag, error) {
	var tags []model.ValidatedTag
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("question_id IN (?)", questionIDs).
		Order("created_at desc").Order("id desc").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
