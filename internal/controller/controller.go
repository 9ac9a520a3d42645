package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts the API under /api/v1 and the health check at the
// root. requireUser guards the routes acting on behalf of a user.
func RegisterRoutes(
	router *gin.Engine,
	requireUser gin.HandlerFunc,
	validations *ValidationController,
	questions *QuestionController,
	answers *AnswerController,
	users *UserController,
	health *HealthController,
) {
	router.GET("/health", health.Health)

	apiV1 := router.Group("/api/v1")
	{
		v := apiV1.Group("/validations")
		v.POST("", requireUser, validations.CreateValidation)
		v.GET("/pending", requireUser, validations.ListPending)
		v.GET("/answer/:id", validations.ListForAnswer)
		v.POST("/llm-validate", validations.MachineValidate)
		v.POST("/llm-validate-text", validations.MachineValidateText)
		v.GET("/validated-tags/me", requireUser, validations.ValidatorTags)
		v.GET("/validated-tags/by-answers", requireUser, validations.AuthorTags)

		q := apiV1.Group("/questions")
		q.GET("/themes", questions.ListThemes)
		q.GET("/random-theme", questions.RandomTheme)
		q.POST("", requireUser, questions.CreateQuestion)
		q.GET("", questions.ListQuestions)
		q.GET("/pending/answer", requireUser, questions.PendingForAnswer)
		q.POST("/generate/:theme_id", questions.GenerateQuestion)
		q.POST("/tag", questions.GenerateTag)
		q.GET("/:id", questions.GetQuestion)

		a := apiV1.Group("/answers")
		a.POST("", requireUser, answers.CreateAnswer)
		a.GET("/question/:question_id", answers.ListForQuestion)
		a.GET("/:id", answers.GetAnswer)

		apiV1.POST("/users", users.Register)
		apiV1.GET("/users/:id", users.GetUser)
		apiV1.GET("/leaderboard", users.Leaderboard)
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg(message)
	} else {
		log.Warn().Err(err).Str("path", ctx.FullPath()).Msg(message)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
}

func badRequest(ctx *gin.Context, message string, err error) {
	resp := dto.ErrorResponse{Message: message}
	if err != nil {
		resp.Details = []string{err.Error()}
	}
	ctx.JSON(http.StatusBadRequest, resp)
}

// parseID reads a positive integer from a path or query value.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
