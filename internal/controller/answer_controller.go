package controller

import (
	"net/http"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/middleware"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	answerService service.AnswerService
}

func NewAnswerController(as service.AnswerService) *AnswerController {
	return &AnswerController{answerService: as}
}

// CreateAnswer godoc
// @Summary Answer a question
// @Tags Answers
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Param answer body dto.CreateAnswerRequest true "Answer data"
// @Success 201 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 409 {object} dto.ErrorResponse "Already answered"
// @Router /answers [post]
func (c *AnswerController) CreateAnswer(ctx *gin.Context) {
	var req dto.CreateAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	answer, err := c.answerService.CreateAnswer(ctx.Request.Context(), middleware.CurrentUserID(ctx), req)
	if err != nil {
		respondError(ctx, err, "Failed to create answer")
		return
	}
	ctx.JSON(http.StatusCreated, answer)
}

// ListForQuestion godoc
// @Summary List answers to a question
// @Tags Answers
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {array} dto.AnswerResponse
// @Router /answers/question/{question_id} [get]
func (c *AnswerController) ListForQuestion(ctx *gin.Context) {
	questionID, ok := parseID(ctx.Param("question_id"))
	if !ok {
		badRequest(ctx, "Invalid question ID", nil)
		return
	}

	answers, err := c.answerService.ListForQuestion(ctx.Request.Context(), questionID)
	if err != nil {
		respondError(ctx, err, "Failed to list answers")
		return
	}
	ctx.JSON(http.StatusOK, answers)
}

// GetAnswer godoc
// @Summary Get an answer
// @Tags Answers
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} dto.AnswerResponse
// @Failure 404 {object} dto.ErrorResponse "Answer not found"
// @Router /answers/{id} [get]
func (c *AnswerController) GetAnswer(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		badRequest(ctx, "Invalid answer ID", nil)
		return
	}

	answer, err := c.answerService.GetAnswer(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "Answer not found")
		return
	}
	ctx.JSON(http.StatusOK, answer)
}
