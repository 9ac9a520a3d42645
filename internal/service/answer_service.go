package service

import (
	"context"
	"fmt"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type AnswerService interface {
	// CreateAnswer stores the user's answer and schedules the machine answer
	// when the question does not have one yet.
	CreateAnswer(ctx context.Context, userID uint, req dto.CreateAnswerRequest) (*dto.AnswerResponse, error)
	ListForQuestion(ctx context.Context, questionID uint) ([]dto.AnswerResponse, error)
	GetAnswer(ctx context.Context, id uint) (*dto.AnswerResponse, error)
}

type answerService struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
	job       MachineAnswerJob
}

func NewAnswerService(answers repository.AnswerRepository, questions repository.QuestionRepository, job MachineAnswerJob) AnswerService {
	return &answerService{answers: answers, questions: questions, job: job}
}

func (s *answerService) CreateAnswer(ctx context.Context, userID uint, req dto.CreateAnswerRequest) (*dto.AnswerResponse, error) {
	question, err := s.questions.FindByID(ctx, req.QuestionID)
	if err != nil {
		return nil, translateDBError(err, "failed to load question %d", req.QuestionID)
	}

	answered, err := s.answers.UserAnswerExists(ctx, question.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing answer: %w", err)
	}
	if answered {
		return nil, fmt.Errorf("user %d already answered question %d: %w", userID, question.ID, ErrConflict)
	}

	text := NormalizeText(req.Text)
	if text == "" {
		return nil, fmt.Errorf("answer text is empty: %w", ErrInvalidInput)
	}

	uid := userID
	answer := model.Answer{Text: text, QuestionID: question.ID, UserID: &uid}
	if err := s.answers.Create(ctx, &answer); err != nil {
		log.Error().Err(err).Uint("questionID", question.ID).Uint("userID", userID).Msg("Failed to create answer")
		return nil, translateDBError(err, "failed to save answer")
	}

	hasMachine, err := s.answers.MachineAnswerExists(ctx, question.ID)
	if err != nil {
		log.Warn().Err(err).Uint("questionID", question.ID).Msg("Failed to check machine answer")
	} else if !hasMachine {
		s.job.Schedule(question.ID)
	}

	log.Info().Uint("answerID", answer.ID).Uint("questionID", question.ID).Uint("userID", userID).Msg("Answer created")
	return toAnswerResponse(&answer)
}

func (s *answerService) ListForQuestion(ctx context.Context, questionID uint) ([]dto.AnswerResponse, error) {
	answers, err := s.answers.FindByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers for question %d: %w", questionID, err)
	}
	resp := make([]dto.AnswerResponse, 0, len(answers))
	if err := copier.Copy(&resp, &answers); err != nil {
		return nil, fmt.Errorf("failed to map answers: %w", err)
	}
	return resp, nil
}

func (s *answerService) GetAnswer(ctx context.Context, id uint) (*dto.AnswerResponse, error) {
	answer, err := s.answers.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "failed to load answer %d", id)
	}
	return toAnswerResponse(answer)
}

func toAnswerResponse(answer *model.Answer) (*dto.AnswerResponse, error) {
	var resp dto.AnswerResponse
	if err := copier.Copy(&resp, answer); err != nil {
		return nil, fmt.Errorf("failed to map answer %d: %w", answer.ID, err)
	}
	return &resp, nil
}
