package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/culturallm/backend/internal/metrics"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultPendingLimit = 10
	maxPendingLimit     = 50
	// MachineCorrectMinScore is the lowest machine score judged correct.
	MachineCorrectMinScore = 6.0
	MinValidationScore     = 0.0
	MaxValidationScore     = 10.0
)

type SubmitValidationInput struct {
	AnswerID  uint
	Score     float64
	IsCorrect bool
	Feedback  *string
}

// PendingValidation is an answer awaiting the caller's judgment with the
// context a validator needs. MachineAnswer is nil when none was generated.
type PendingValidation struct {
	Answer        model.Answer
	Question      model.Question
	MachineAnswer *model.Answer
}

type ValidationService interface {
	SubmitValidation(ctx context.Context, validatorID uint, input SubmitValidationInput) (*model.Validation, error)
	ListPendingValidations(ctx context.Context, userID uint, limit int) ([]PendingValidation, error)
	ListForAnswer(ctx context.Context, answerID uint) ([]model.Validation, error)
	// MachineValidate judges the answer and its question's machine answer,
	// returning [answer, machine answer] judgments in that order.
	MachineValidate(ctx context.Context, answerID uint) ([]model.MachineValidation, error)
	// MachineValidateText judges unsaved text against the question's machine
	// answer. Nothing is persisted.
	MachineValidateText(ctx context.Context, questionID uint, text string) ([]model.MachineValidation, error)
}

type validationService struct {
	db                 *gorm.DB
	answers            repository.AnswerRepository
	questions          repository.QuestionRepository
	validations        repository.ValidationRepository
	machineValidations repository.MachineValidationRepository
	scoring            ScoringService
	tags               TagService
	llm                LLMService
	metrics            *metrics.Metrics
}

func NewValidationService(
	db *gorm.DB,
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	validations repository.ValidationRepository,
	machineValidations repository.MachineValidationRepository,
	scoring ScoringService,
	tags TagService,
	llm LLMService,
	m *metrics.Metrics,
) ValidationService {
	return &validationService{
		db:                 db,
		answers:            answers,
		questions:          questions,
		validations:        validations,
		machineValidations: machineValidations,
		scoring:            scoring,
		tags:               tags,
		llm:                llm,
		metrics:            m,
	}
}

func (s *validationService) SubmitValidation(ctx context.Context, validatorID uint, input SubmitValidationInput) (*model.Validation, error) {
	if input.Score < MinValidationScore || input.Score > MaxValidationScore {
		return nil, fmt.Errorf("score %.1f outside [0,10]: %w", input.Score, ErrInvalidInput)
	}

	answer, err := s.answers.FindByID(ctx, input.AnswerID)
	if err != nil {
		return nil, translateDBError(err, "failed to load answer %d", input.AnswerID)
	}

	exists, err := s.validations.Exists(ctx, answer.ID, validatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing validation: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("user %d already validated answer %d: %w", validatorID, answer.ID, ErrConflict)
	}

	if answer.AuthoredBy(validatorID) {
		return nil, fmt.Errorf("user %d cannot validate their own answer %d: %w", validatorID, answer.ID, ErrForbidden)
	}

	validation := &model.Validation{
		AnswerID:    answer.ID,
		ValidatorID: validatorID,
		Score:       input.Score,
		IsCorrect:   input.IsCorrect,
		Feedback:    input.Feedback,
	}
	bonus := AuthorBonus(answer, input.Score, input.IsCorrect)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validations.WithTx(tx).Create(ctx, validation); err != nil {
			return translateDBError(err, "failed to save validation")
		}
		scoring := s.scoring.WithTx(tx)
		if err := scoring.Award(ctx, validatorID, ValidatorPoints(input.IsCorrect)); err != nil {
			return fmt.Errorf("failed to award validator %d: %w", validatorID, err)
		}
		if bonus > 0 {
			if err := scoring.Award(ctx, *answer.UserID, bonus); err != nil {
				return fmt.Errorf("failed to award author %d: %w", *answer.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("answerID", answer.ID).Uint("validatorID", validatorID).Msg("Validation rolled back")
		return nil, err
	}
	s.metrics.ValidationRecorded(input.IsCorrect)

	s.recordTags(ctx, answer, validatorID, input.Score)

	log.Info().
		Uint("validationID", validation.ID).
		Uint("answerID", answer.ID).
		Uint("validatorID", validatorID).
		Float64("score", input.Score).
		Bool("isCorrect", input.IsCorrect).
		Int("authorBonus", bonus).
		Msg("Validation created")
	return validation, nil
}

// recordTags runs after the validation committed; failures are only logged.
func (s *validationService) recordTags(ctx context.Context, answer *model.Answer, validatorID uint, score float64) {
	question := answer.Question
	if question.Tag == "" {
		return
	}

	if err := s.tags.RecordValidatedTag(ctx, validatorID, question.ID, question.Tag, score); err != nil {
		log.Warn().Err(err).Uint("userID", validatorID).Uint("questionID", question.ID).Msg("Failed to record validator tag")
	}

	if answer.UserID == nil {
		return
	}
	author := *answer.UserID
	if author == validatorID || author == question.CreatorID {
		return
	}
	if err := s.tags.RecordValidatedTag(ctx, author, question.ID, question.Tag, score); err != nil {
		log.Warn().Err(err).Uint("userID", author).Uint("questionID", question.ID).Msg("Failed to record author tag")
	}
}

func (s *validationService) ListPendingValidations(ctx context.Context, userID uint, limit int) ([]PendingValidation, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	if limit > maxPendingLimit {
		limit = maxPendingLimit
	}

	answers, err := s.answers.FindPendingValidation(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending validations for user %d: %w", userID, err)
	}

	questionIDs := make([]uint, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	machine, err := s.answers.FindMachineAnswers(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine answers: %w", err)
	}

	pending := make([]PendingValidation, 0, len(answers))
	for _, a := range answers {
		item := PendingValidation{Answer: a, Question: a.Question}
		if m, ok := machine[a.QuestionID]; ok {
			m := m
			item.MachineAnswer = &m
		}
		pending = append(pending, item)
	}
	return pending, nil
}

func (s *validationService) ListForAnswer(ctx context.Context, answerID uint) ([]model.Validation, error) {
	validations, err := s.validations.FindByAnswer(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations for answer %d: %w", answerID, err)
	}
	return validations, nil
}

func (s *validationService) MachineValidate(ctx context.Context, answerID uint) ([]model.MachineValidation, error) {
	answer, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return nil, translateDBError(err, "failed to load answer %d", answerID)
	}
	if answer.Question.ID == 0 {
		return nil, fmt.Errorf("question %d of answer %d: %w", answer.QuestionID, answerID, ErrNotFound)
	}

	machine, err := s.answers.FindMachineAnswer(ctx, answer.QuestionID)
	if err != nil {
		return nil, translateDBError(err, "failed to load machine answer of question %d", answer.QuestionID)
	}

	results, err := s.judgePair(ctx, answer.Question.Text, answer.Text, machine.Text)
	if err != nil {
		return nil, err
	}
	results[0].AnswerID = answer.ID
	results[1].AnswerID = machine.ID

	if err := s.machineValidations.CreateBatch(ctx, []*model.MachineValidation{&results[0], &results[1]}); err != nil {
		return nil, fmt.Errorf("failed to save machine validations: %w", err)
	}
	s.metrics.MachineValidationRecorded("human")
	s.metrics.MachineValidationRecorded("machine")

	log.Info().
		Uint("answerID", answer.ID).
		Uint("machineAnswerID", machine.ID).
		Float64("answerScore", results[0].Score).
		Float64("machineScore", results[1].Score).
		Msg("Machine validation completed")
	return results, nil
}

func (s *validationService) MachineValidateText(ctx context.Context, questionID uint, text string) ([]model.MachineValidation, error) {
	text = NormalizeText(text)
	if text == "" {
		return nil, fmt.Errorf("answer text is empty: %w", ErrInvalidInput)
	}

	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, translateDBError(err, "failed to load question %d", questionID)
	}
	machine, err := s.answers.FindMachineAnswer(ctx, questionID)
	if err != nil {
		return nil, translateDBError(err, "failed to load machine answer of question %d", questionID)
	}

	results, err := s.judgePair(ctx, question.Text, text, machine.Text)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	results[0].CreatedAt = now
	results[1].AnswerID = machine.ID
	results[1].CreatedAt = now
	return results, nil
}

// judgePair evaluates both answers concurrently. Either failure cancels the other call.
func (s *validationService) judgePair(ctx context.Context, question, answer, machineAnswer string) ([]model.MachineValidation, error) {
	results := make([]model.MachineValidation, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, text := range []string{answer, machineAnswer} {
		i, text := i, text
		g.Go(func() error {
			eval, err := s.llm.EvaluateAnswer(gctx, question, text)
			if err != nil {
				return err
			}
			results[i] = model.MachineValidation{
				Score:     eval.Score,
				IsCorrect: eval.Score >= MachineCorrectMinScore,
				Feedback:  eval.Feedback,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrMalformedResponse) && !errors.Is(err, ErrServiceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		return nil, fmt.Errorf("machine validation failed: %w", err)
	}
	return results, nil
}
