package repository

import (
	"context"
	"errors"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	// FindByID preloads the question and its theme.
	FindByID(ctx context.Context, id uint) (*model.Answer, error)
	FindByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error)
	FindMachineAnswer(ctx context.Context, questionID uint) (*model.Answer, error)
	MachineAnswerExists(ctx context.Context, questionID uint) (bool, error)
	UserAnswerExists(ctx context.Context, questionID, userID uint) (bool, error)
	// FindPendingValidation returns human answers by other users that the
	// validator has not judged yet.
	FindPendingValidation(ctx context.Context, validatorID uint, limit int) ([]model.Answer, error)
	// FindMachineAnswers maps question id to its machine answer.
	FindMachineAnswers(ctx context.Context, questionIDs []uint) (map[uint]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Omit("Question").Create(answer).Error
}

func (r *answerRepository) FindByID(ctx context.Context, id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.WithContext(ctx).Preload("Question.Theme").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at asc").Order("id asc").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) FindMachineAnswer(ctx context.Context, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ? AND is_llm_answer = ?", questionID, true).
		Take(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) MachineAnswerExists(ctx context.Context, questionID uint) (bool, error) {
	_, err := r.FindMachineAnswer(ctx, questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *answerRepository) UserAnswerExists(ctx context.Context, questionID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Answer{}).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *answerRepository) FindPendingValidation(ctx context.Context, validatorID uint, limit int) ([]model.Answer, error) {
	var answers []model.Answer
	judged := r.db.Model(&model.Validation{}).Select("answer_id").Where("validator_id = ?", validatorID)
	err := r.db.WithContext(ctx).Preload("Question.Theme").
		Where("user_id IS NOT NULL AND user_id <> ?", validatorID).
		Where("id NOT IN (?)", judged).
		Order("id asc").
		Limit(limit).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) FindMachineAnswers(ctx context.Context, questionIDs []uint) (map[uint]model.Answer, error) {
	out := make(map[uint]model.Answer, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Where("question_id IN ? AND is_llm_answer = ?", questionIDs, true).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		out[a.QuestionID] = a
	}
	return out, nil
}
