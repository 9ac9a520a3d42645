package repository

import (
	"context"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

// QuestionFilter narrows ListActive. A nil ThemeID matches every theme.
type QuestionFilter struct {
	Skip    int
	Limit   int
	ThemeID *uint
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	ListActive(ctx context.Context, filter QuestionFilter) ([]model.Question, error)
	// FindPendingForAnswer returns active questions the user neither created nor answered.
	FindPendingForAnswer(ctx context.Context, userID uint, limit int) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Omit("Theme").Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).Preload("Theme").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) ListActive(ctx context.Context, filter QuestionFilter) ([]model.Question, error) {
	var questions []model.Question
	query := r.db.WithContext(ctx).Preload("Theme").Where("is_active = ?", true)
	if filter.ThemeID != nil {
		query = query.Where("theme_id = ?", *filter.ThemeID)
	}
	err := query.Order("created_at desc").Order("id desc").
		Offset(filter.Skip).Limit(filter.Limit).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindPendingForAnswer(ctx context.Context, userID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	answered := r.db.Model(&model.Answer{}).Select("question_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).Preload("Theme").
		Where("is_active = ?", true).
		Where("creator_id <> ?", userID).
		Where("id NOT IN (?)", answered).
		Order("id asc").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
