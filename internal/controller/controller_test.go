package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/jobs"
	"github.com/culturallm/backend/internal/middleware"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/culturallm/backend/internal/service"
	"github.com/culturallm/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scriptedGenerator struct {
	err error
}

func (g scriptedGenerator) Generate(_ context.Context, prompt string, _ service.GenerationParams) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.Contains(prompt, service.ScoreLabel):
		return "Punteggio complessivo: 8\nFeedback: Risposta corretta", nil
	case strings.Contains(prompt, "singolo tag"):
		return "Unità d'Italia", nil
	default:
		return "L'Italia fu unificata nel 1861.", nil
	}
}

type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
	job    service.MachineAnswerJob
}

func newAPI(t *testing.T, gen service.Generator) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)

	users := repository.NewUserRepository(db)
	themes := repository.NewThemeRepository(db)
	questions := repository.NewQuestionRepository(db)
	answers := repository.NewAnswerRepository(db)
	tags := service.NewTagService(repository.NewValidatedTagRepository(db))
	llm := service.NewLLMService(gen)
	job := service.NewMachineAnswerJob(answers, questions, llm, jobs.NewMemoryGuard(time.Minute), time.Second, nil)

	validations := service.NewValidationService(db, answers, questions,
		repository.NewValidationRepository(db), repository.NewMachineValidationRepository(db),
		service.NewScoringService(db, users, nil), tags, llm, nil)

	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router,
		middleware.RequireUser(users),
		NewValidationController(validations, tags),
		NewQuestionController(service.NewQuestionService(questions, themes, llm, job)),
		NewAnswerController(service.NewAnswerService(answers, questions, job)),
		NewUserController(service.NewUserService(users)),
		NewHealthController(db),
	)
	t.Cleanup(func() { _ = job.Wait(context.Background()) })
	return &apiFixture{db: db, router: router, job: job}
}

func (f *apiFixture) do(t *testing.T, method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.Itoa(int(userID)))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestValidationEndpoints(t *testing.T) {
	f := newAPI(t, scriptedGenerator{})
	validator := testutil.User(t, f.db, "validator")
	author := testutil.User(t, f.db, "author")
	theme := testutil.Theme(t, f.db, "Storia")
	q := testutil.Question(t, f.db, validator.ID, theme.ID, "Quando fu unificata l'Italia?", "unità")
	answer := testutil.Answer(t, f.db, q.ID, author.ID, "Nel 1861")
	testutil.MachineAnswer(t, f.db, q.ID, "Nel 1861")

	w := f.do(t, http.MethodGet, "/api/v1/validations/pending", validator.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []dto.PendingValidationResponse
	decode(t, w, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, answer.ID, pending[0].Answer.ID)
	assert.Equal(t, "Storia", pending[0].Question.Theme.Name)
	require.NotNil(t, pending[0].LLMAnswer)

	body := dto.CreateValidationRequest{AnswerID: answer.ID, Score: 8, IsCorrect: true}
	w = f.do(t, http.MethodPost, "/api/v1/validations", validator.ID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.ValidationResponse
	decode(t, w, &created)
	assert.Equal(t, validator.ID, created.ValidatorID)

	w = f.do(t, http.MethodPost, "/api/v1/validations", validator.ID, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/validations", author.ID, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/validations", 0, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/validations", validator.ID, dto.CreateValidationRequest{AnswerID: 999, Score: 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/validations", validator.ID, map[string]interface{}{"answer_id": answer.ID, "score": 12})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/validations/answer/"+strconv.Itoa(int(answer.ID)), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.ValidationResponse
	decode(t, w, &list)
	assert.Len(t, list, 1)

	assert.Equal(t, 16, testutil.Reload(t, f.db, author.ID).Score)

	w = f.do(t, http.MethodGet, "/api/v1/validations/validated-tags/me", validator.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []dto.ValidatedTagResponse
	decode(t, w, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "unità", tags[0].Tag)

	w = f.do(t, http.MethodGet, "/api/v1/validations/validated-tags/by-answers", author.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, 8.0, tags[0].Score)
}

func TestMachineValidationEndpoints(t *testing.T) {
	f := newAPI(t, scriptedGenerator{})
	author := testutil.User(t, f.db, "author")
	theme := testutil.Theme(t, f.db, "Storia")
	q := testutil.Question(t, f.db, author.ID, theme.ID, "Quando fu unificata l'Italia?", "")
	answer := testutil.Answer(t, f.db, q.ID, author.ID, "Nel 1861")
	machine := testutil.MachineAnswer(t, f.db, q.ID, "Il 17 marzo 1861")

	w := f.do(t, http.MethodPost, "/api/v1/validations/llm-validate?answer_id="+strconv.Itoa(int(answer.ID)), 0, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var results []dto.MachineValidationResponse
	decode(t, w, &results)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotZero(t, r.ID)
		assert.Equal(t, 8.0, r.Score)
		assert.True(t, r.IsCorrect)
		assert.NotEmpty(t, r.Feedback)
		assert.False(t, r.CreatedAt.IsZero())
	}
	assert.Equal(t, answer.ID, results[0].AnswerID)
	assert.Equal(t, machine.ID, results[1].AnswerID)

	w = f.do(t, http.MethodPost, "/api/v1/validations/llm-validate-text", 0,
		dto.LLMValidateTextRequest{QuestionID: q.ID, AnswerText: "Nel 1861"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &results)
	require.Len(t, results, 2)
	assert.Zero(t, results[0].ID)

	w = f.do(t, http.MethodPost, "/api/v1/validations/llm-validate?answer_id=abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/validations/llm-validate?answer_id=999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMachineValidationUnavailable(t *testing.T) {
	f := newAPI(t, scriptedGenerator{err: service.ErrServiceUnavailable})
	author := testutil.User(t, f.db, "author")
	theme := testutil.Theme(t, f.db, "Storia")
	q := testutil.Question(t, f.db, author.ID, theme.ID, "Quando fu unificata l'Italia?", "")
	answer := testutil.Answer(t, f.db, q.ID, author.ID, "Nel 1861")
	testutil.MachineAnswer(t, f.db, q.ID, "Il 17 marzo 1861")

	w := f.do(t, http.MethodPost, "/api/v1/validations/llm-validate?answer_id="+strconv.Itoa(int(answer.ID)), 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var errResp dto.ErrorResponse
	decode(t, w, &errResp)
	assert.NotEmpty(t, errResp.Message)
}

func TestQuestionAndAnswerFlow(t *testing.T) {
	f := newAPI(t, scriptedGenerator{})
	creator := testutil.User(t, f.db, "creator")
	player := testutil.User(t, f.db, "player")
	theme := testutil.Theme(t, f.db, "Storia")

	w := f.do(t, http.MethodPost, "/api/v1/questions", creator.ID,
		dto.CreateQuestionRequest{Text: "Quando fu unificata l'Italia?", ThemeID: theme.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var question dto.QuestionResponse
	decode(t, w, &question)
	assert.Equal(t, "Unità d'Italia", question.Tag)
	require.NoError(t, f.job.Wait(context.Background()))

	w = f.do(t, http.MethodGet, "/api/v1/questions/pending/answer", player.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []dto.QuestionResponse
	decode(t, w, &pending)
	require.Len(t, pending, 1)

	w = f.do(t, http.MethodPost, "/api/v1/answers", player.ID, dto.CreateAnswerRequest{QuestionID: question.ID, Text: "Nel 1861"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/answers", player.ID, dto.CreateAnswerRequest{QuestionID: question.ID, Text: "Nel 1861"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/answers/question/"+strconv.Itoa(int(question.ID)), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var answers []dto.AnswerResponse
	decode(t, w, &answers)
	assert.Len(t, answers, 2)

	w = f.do(t, http.MethodGet, "/api/v1/questions/"+strconv.Itoa(int(question.ID)), 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/v1/questions/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/questions/themes", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var themes []dto.ThemeResponse
	decode(t, w, &themes)
	assert.Len(t, themes, 1)

	w = f.do(t, http.MethodPost, "/api/v1/questions/generate/"+strconv.Itoa(int(theme.ID)), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var generated dto.GeneratedQuestionResponse
	decode(t, w, &generated)
	assert.NotEmpty(t, generated.Text)

	w = f.do(t, http.MethodPost, "/api/v1/questions/tag", 0, dto.GenerateTagRequest{Question: "Chi era Garibaldi?"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	f := newAPI(t, scriptedGenerator{})

	w := f.do(t, http.MethodPost, "/api/v1/users", 0, dto.RegisterUserRequest{Username: "elena", Email: "elena@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user dto.UserResponse
	decode(t, w, &user)

	w = f.do(t, http.MethodPost, "/api/v1/users", 0, dto.RegisterUserRequest{Username: "elena", Email: "elena2@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/users", 0, dto.RegisterUserRequest{Username: "el", Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", user.ID).Update("score", 40).Error)

	w = f.do(t, http.MethodGet, "/api/v1/users/"+strconv.Itoa(int(user.ID)), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &user)
	assert.Equal(t, 40, user.Score)
	assert.InDelta(t, 0.4, user.Level.Progress, 1e-9)

	w = f.do(t, http.MethodGet, "/api/v1/leaderboard?limit=5", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []dto.LeaderboardEntry
	decode(t, w, &board)
	require.Len(t, board, 1)
	assert.Equal(t, 1, board[0].Rank)

	w = f.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		service.ErrNotFound:           http.StatusNotFound,
		service.ErrConflict:           http.StatusConflict,
		service.ErrForbidden:          http.StatusForbidden,
		service.ErrInvalidInput:       http.StatusBadRequest,
		service.ErrServiceUnavailable: http.StatusServiceUnavailable,
		&service.MalformedResponseError{Reason: "x"}: http.StatusBadGateway,
		assert.AnError: http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestToPendingValidationResponse(t *testing.T) {
	uid := uint(7)
	pending := service.PendingValidation{
		Answer:   model.Answer{ID: 3, Text: "Nel 1861", QuestionID: 2, UserID: &uid},
		Question: model.Question{ID: 2, Text: "Quando?", Theme: model.Theme{ID: 1, Name: "Storia"}},
	}

	item, err := toPendingValidationResponse(&pending)
	require.NoError(t, err)
	assert.Equal(t, uint(3), item.Answer.ID)
	assert.Equal(t, "Storia", item.Question.Theme.Name)
	assert.Nil(t, item.LLMAnswer)

	pending.MachineAnswer = &model.Answer{ID: 4, Text: "Il 17 marzo 1861", QuestionID: 2, IsLLMAnswer: true}
	item, err = toPendingValidationResponse(&pending)
	require.NoError(t, err)
	require.NotNil(t, item.LLMAnswer)
	assert.Equal(t, uint(4), item.LLMAnswer.ID)
	assert.True(t, item.LLMAnswer.IsLLMAnswer)
	assert.Nil(t, item.LLMAnswer.UserID)
}
