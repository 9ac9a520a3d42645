package controller

import (
	"net/http"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/middleware"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	questionService service.QuestionService
}

func NewQuestionController(qs service.QuestionService) *QuestionController {
	return &QuestionController{questionService: qs}
}

// ListThemes godoc
// @Summary List cultural themes
// @Tags Questions
// @Produce json
// @Success 200 {array} dto.ThemeResponse
// @Router /questions/themes [get]
func (c *QuestionController) ListThemes(ctx *gin.Context) {
	themes, err := c.questionService.ListThemes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Failed to list themes")
		return
	}
	ctx.JSON(http.StatusOK, themes)
}

// RandomTheme godoc
// @Summary Pick a random theme
// @Tags Questions
// @Produce json
// @Success 200 {object} dto.ThemeResponse
// @Failure 404 {object} dto.ErrorResponse "No themes available"
// @Router /questions/random-theme [get]
func (c *QuestionController) RandomTheme(ctx *gin.Context) {
	theme, err := c.questionService.RandomTheme(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "No themes available")
		return
	}
	ctx.JSON(http.StatusOK, theme)
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Stores the question with a generated tag and starts generating its machine answer.
// @Tags Questions
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Param question body dto.CreateQuestionRequest true "Question data"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Theme not found"
// @Router /questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	question, err := c.questionService.CreateQuestion(ctx.Request.Context(), middleware.CurrentUserID(ctx), req)
	if err != nil {
		respondError(ctx, err, "Failed to create question")
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// ListQuestions godoc
// @Summary List active questions
// @Tags Questions
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size (default 100)"
// @Param theme_id query int false "Theme filter"
// @Success 200 {array} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var q dto.ListQuestionsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, "Invalid query", err)
		return
	}

	questions, err := c.questionService.ListQuestions(ctx.Request.Context(), q)
	if err != nil {
		respondError(ctx, err, "Failed to list questions")
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// GetQuestion godoc
// @Summary Get a question
// @Tags Questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid question ID"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		badRequest(ctx, "Invalid question ID", nil)
		return
	}

	question, err := c.questionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "Question not found")
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// PendingForAnswer godoc
// @Summary Questions the caller can still answer
// @Tags Questions
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {array} dto.QuestionResponse
// @Router /questions/pending/answer [get]
func (c *QuestionController) PendingForAnswer(ctx *gin.Context) {
	var q dto.LimitQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, "Invalid limit", err)
		return
	}

	questions, err := c.questionService.PendingForAnswer(ctx.Request.Context(), middleware.CurrentUserID(ctx), q.Limit)
	if err != nil {
		respondError(ctx, err, "Failed to list questions")
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// GenerateQuestion godoc
// @Summary Draft a question for a theme
// @Description Returns generated text and tag without storing anything.
// @Tags Questions
// @Produce json
// @Param theme_id path int true "Theme ID"
// @Success 200 {object} dto.GeneratedQuestionResponse
// @Failure 404 {object} dto.ErrorResponse "Theme not found"
// @Failure 503 {object} dto.ErrorResponse "Generation service unavailable"
// @Router /questions/generate/{theme_id} [post]
func (c *QuestionController) GenerateQuestion(ctx *gin.Context) {
	themeID, ok := parseID(ctx.Param("theme_id"))
	if !ok {
		badRequest(ctx, "Invalid theme ID", nil)
		return
	}

	generated, err := c.questionService.GenerateQuestion(ctx.Request.Context(), themeID)
	if err != nil {
		respondError(ctx, err, "Error generating question")
		return
	}
	ctx.JSON(http.StatusOK, generated)
}

// GenerateTag godoc
// @Summary Generate a tag for a question text
// @Tags Questions
// @Accept json
// @Produce json
// @Param request body dto.GenerateTagRequest true "Question text"
// @Success 200 {object} dto.TagResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /questions/tag [post]
func (c *QuestionController) GenerateTag(ctx *gin.Context) {
	var req dto.GenerateTagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	tag, err := c.questionService.GenerateTag(ctx.Request.Context(), req.Question)
	if err != nil {
		respondError(ctx, err, "Failed to generate tag")
		return
	}
	ctx.JSON(http.StatusOK, tag)
}
