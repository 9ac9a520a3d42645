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

const (
	defaultQuestionPageSize = 100
	DefaultPendingQuestions = 10
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, creatorID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, query dto.ListQuestionsQuery) ([]dto.QuestionResponse, error)
	// PendingForAnswer lists questions the user did not create and has not answered.
	PendingForAnswer(ctx context.Context, userID uint, limit int) ([]dto.QuestionResponse, error)
	ListThemes(ctx context.Context) ([]dto.ThemeResponse, error)
	RandomTheme(ctx context.Context) (*dto.ThemeResponse, error)
	// GenerateQuestion drafts a question on the theme without saving it.
	GenerateQuestion(ctx context.Context, themeID uint) (*dto.GeneratedQuestionResponse, error)
	GenerateTag(ctx context.Context, text string) (*dto.TagResponse, error)
}

type questionService struct {
	questions repository.QuestionRepository
	themes    repository.ThemeRepository
	llm       LLMService
	job       MachineAnswerJob
}

func NewQuestionService(
	questions repository.QuestionRepository,
	themes repository.ThemeRepository,
	llm LLMService,
	job MachineAnswerJob,
) QuestionService {
	return &questionService{questions: questions, themes: themes, llm: llm, job: job}
}

func (s *questionService) CreateQuestion(ctx context.Context, creatorID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	theme, err := s.themes.FindByID(ctx, req.ThemeID)
	if err != nil {
		log.Warn().Err(err).Uint("themeID", req.ThemeID).Msg("Invalid theme for question creation")
		return nil, translateDBError(err, "failed to load theme %d", req.ThemeID)
	}

	text := NormalizeText(req.Text)
	if text == "" {
		return nil, fmt.Errorf("question text is empty: %w", ErrInvalidInput)
	}

	question := model.Question{
		Text:      text,
		CreatorID: creatorID,
		ThemeID:   theme.ID,
		Tag:       s.llm.GenerateTag(ctx, text),
		IsActive:  true,
	}
	if err := s.questions.Create(ctx, &question); err != nil {
		log.Error().Err(err).Uint("creatorID", creatorID).Msg("Failed to create question in service")
		return nil, translateDBError(err, "failed to save question")
	}
	question.Theme = *theme

	s.job.Schedule(question.ID)

	log.Info().Uint("questionID", question.ID).Uint("creatorID", creatorID).Str("tag", question.Tag).Msg("Question created")
	return toQuestionResponse(&question)
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error) {
	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "failed to load question %d", id)
	}
	return toQuestionResponse(question)
}

func (s *questionService) ListQuestions(ctx context.Context, query dto.ListQuestionsQuery) ([]dto.QuestionResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultQuestionPageSize
	}
	questions, err := s.questions.ListActive(ctx, repository.QuestionFilter{
		Skip:    query.Skip,
		Limit:   limit,
		ThemeID: query.ThemeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return toQuestionResponses(questions)
}

func (s *questionService) PendingForAnswer(ctx context.Context, userID uint, limit int) ([]dto.QuestionResponse, error) {
	if limit <= 0 {
		limit = DefaultPendingQuestions
	}
	questions, err := s.questions.FindPendingForAnswer(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanswered questions for user %d: %w", userID, err)
	}
	return toQuestionResponses(questions)
}

func (s *questionService) ListThemes(ctx context.Context) ([]dto.ThemeResponse, error) {
	themes, err := s.themes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	resp := make([]dto.ThemeResponse, 0, len(themes))
	if err := copier.Copy(&resp, &themes); err != nil {
		return nil, fmt.Errorf("failed to map themes: %w", err)
	}
	return resp, nil
}

func (s *questionService) RandomTheme(ctx context.Context) (*dto.ThemeResponse, error) {
	theme, err := s.themes.FindRandom(ctx)
	if err != nil {
		return nil, translateDBError(err, "failed to pick a theme")
	}
	var resp dto.ThemeResponse
	if err := copier.Copy(&resp, theme); err != nil {
		return nil, fmt.Errorf("failed to map theme %d: %w", theme.ID, err)
	}
	return &resp, nil
}

func (s *questionService) GenerateQuestion(ctx context.Context, themeID uint) (*dto.GeneratedQuestionResponse, error) {
	theme, err := s.themes.FindByID(ctx, themeID)
	if err != nil {
		return nil, translateDBError(err, "failed to load theme %d", themeID)
	}

	text, err := s.llm.GenerateQuestion(ctx, theme.Name)
	if err != nil {
		log.Error().Err(err).Uint("themeID", themeID).Msg("Question generation failed")
		return nil, err
	}
	return &dto.GeneratedQuestionResponse{Text: text, Tag: s.llm.GenerateTag(ctx, text)}, nil
}

func (s *questionService) GenerateTag(ctx context.Context, text string) (*dto.TagResponse, error) {
	text = NormalizeText(text)
	if text == "" {
		return nil, fmt.Errorf("question text is empty: %w", ErrInvalidInput)
	}
	return &dto.TagResponse{Tag: s.llm.GenerateTag(ctx, text)}, nil
}

func toQuestionResponse(question *model.Question) (*dto.QuestionResponse, error) {
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, question); err != nil {
		return nil, fmt.Errorf("failed to map question %d: %w", question.ID, err)
	}
	return &resp, nil
}

func toQuestionResponses(questions []model.Question) ([]dto.QuestionResponse, error) {
	resp := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		r, err := toQuestionResponse(&questions[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}
