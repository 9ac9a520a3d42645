package controller

import (
	"fmt"
	"net/http"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/middleware"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type ValidationController struct {
	validationService service.ValidationService
	tagService        service.TagService
}

func NewValidationController(vs service.ValidationService, ts service.TagService) *ValidationController {
	return &ValidationController{validationService: vs, tagService: ts}
}

// CreateValidation godoc
// @Summary Validate another user's answer
// @Description Stores the caller's judgment and awards points to the validator and, for correct answers scored 7 or more, to the author.
// @Tags Validations
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Param validation body dto.CreateValidationRequest true "Judgment"
// @Success 201 {object} dto.ValidationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 403 {object} dto.ErrorResponse "Own answer"
// @Failure 404 {object} dto.ErrorResponse "Answer not found"
// @Failure 409 {object} dto.ErrorResponse "Already validated"
// @Router /validations [post]
func (c *ValidationController) CreateValidation(ctx *gin.Context) {
	var req dto.CreateValidationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	validation, err := c.validationService.SubmitValidation(ctx.Request.Context(), middleware.CurrentUserID(ctx), service.SubmitValidationInput{
		AnswerID:  req.AnswerID,
		Score:     req.Score,
		IsCorrect: req.IsCorrect,
		Feedback:  req.Feedback,
	})
	if err != nil {
		respondError(ctx, err, "Failed to create validation")
		return
	}

	var resp dto.ValidationResponse
	if err := copier.Copy(&resp, validation); err != nil {
		respondError(ctx, err, "Failed to map validation")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListPending godoc
// @Summary List answers awaiting the caller's validation
// @Description Answers written by other users that the caller has not validated, with question, theme and machine answer.
// @Tags Validations
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {array} dto.PendingValidationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Router /validations/pending [get]
func (c *ValidationController) ListPending(ctx *gin.Context) {
	var q dto.LimitQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, "Invalid limit", err)
		return
	}

	pending, err := c.validationService.ListPendingValidations(ctx.Request.Context(), middleware.CurrentUserID(ctx), q.Limit)
	if err != nil {
		respondError(ctx, err, "Failed to list pending validations")
		return
	}

	resp := make([]dto.PendingValidationResponse, 0, len(pending))
	for i := range pending {
		item, err := toPendingValidationResponse(&pending[i])
		if err != nil {
			respondError(ctx, err, "Failed to map pending validations")
			return
		}
		resp = append(resp, *item)
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListForAnswer godoc
// @Summary List validations of an answer
// @Tags Validations
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {array} dto.ValidationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid answer ID"
// @Router /validations/answer/{id} [get]
func (c *ValidationController) ListForAnswer(ctx *gin.Context) {
	answerID, ok := parseID(ctx.Param("id"))
	if !ok {
		badRequest(ctx, "Invalid answer ID", nil)
		return
	}

	validations, err := c.validationService.ListForAnswer(ctx.Request.Context(), answerID)
	if err != nil {
		respondError(ctx, err, "Failed to list validations")
		return
	}
	resp := make([]dto.ValidationResponse, 0, len(validations))
	if err := copier.Copy(&resp, &validations); err != nil {
		respondError(ctx, err, "Failed to map validations")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// MachineValidate godoc
// @Summary Machine-validate an answer against the machine answer
// @Description Judges the answer and its question's machine answer through the generation service and stores both judgments.
// @Tags Validations
// @Produce json
// @Param answer_id query int true "Answer ID"
// @Success 200 {array} dto.MachineValidationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid answer ID"
// @Failure 404 {object} dto.ErrorResponse "Answer, question or machine answer not found"
// @Failure 502 {object} dto.ErrorResponse "Unparseable generation output"
// @Failure 503 {object} dto.ErrorResponse "Generation service unavailable"
// @Router /validations/llm-validate [post]
func (c *ValidationController) MachineValidate(ctx *gin.Context) {
	answerID, ok := parseID(ctx.Query("answer_id"))
	if !ok {
		badRequest(ctx, "Invalid answer ID", nil)
		return
	}

	results, err := c.validationService.MachineValidate(ctx.Request.Context(), answerID)
	if err != nil {
		respondError(ctx, err, "Machine validation failed")
		return
	}
	resp, err := toMachineValidationResponses(results)
	if err != nil {
		respondError(ctx, err, "Failed to map machine validations")
		return
	}
	log.Info().Uint("answerID", answerID).Msg("Machine validation served")
	ctx.JSON(http.StatusOK, resp)
}

// MachineValidateText godoc
// @Summary Machine-validate free text
// @Description Judges unsaved text and the question's machine answer. Nothing is stored.
// @Tags Validations
// @Accept json
// @Produce json
// @Param request body dto.LLMValidateTextRequest true "Question and text"
// @Success 200 {array} dto.MachineValidationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Question or machine answer not found"
// @Failure 502 {object} dto.ErrorResponse "Unparseable generation output"
// @Failure 503 {object} dto.ErrorResponse "Generation service unavailable"
// @Router /validations/llm-validate-text [post]
func (c *ValidationController) MachineValidateText(ctx *gin.Context) {
	var req dto.LLMValidateTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body", err)
		return
	}

	results, err := c.validationService.MachineValidateText(ctx.Request.Context(), req.QuestionID, req.AnswerText)
	if err != nil {
		respondError(ctx, err, "Machine validation failed")
		return
	}
	resp, err := toMachineValidationResponses(results)
	if err != nil {
		respondError(ctx, err, "Failed to map machine validations")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ValidatorTags godoc
// @Summary Tags the caller collected as a validator
// @Tags Validations
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Success 200 {array} dto.ValidatedTagResponse
// @Router /validations/validated-tags/me [get]
func (c *ValidationController) ValidatorTags(ctx *gin.Context) {
	tags, err := c.tagService.ForValidator(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err, "Failed to list validated tags")
		return
	}
	resp, err := toValidatedTagResponses(tags)
	if err != nil {
		respondError(ctx, err, "Failed to map validated tags")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AuthorTags godoc
// @Summary Tags the caller collected on questions they answered
// @Tags Validations
// @Produce json
// @Param X-User-ID header int true "Acting user ID"
// @Success 200 {array} dto.ValidatedTagResponse
// @Router /validations/validated-tags/by-answers [get]
func (c *ValidationController) AuthorTags(ctx *gin.Context) {
	tags, err := c.tagService.ForAuthor(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err, "Failed to list validated tags")
		return
	}
	resp, err := toValidatedTagResponses(tags)
	if err != nil {
		respondError(ctx, err, "Failed to map validated tags")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func toPendingValidationResponse(p *service.PendingValidation) (*dto.PendingValidationResponse, error) {
	var item dto.PendingValidationResponse
	if err := copier.Copy(&item.Answer, &p.Answer); err != nil {
		return nil, fmt.Errorf("failed to map answer %d: %w", p.Answer.ID, err)
	}
	if err := copier.Copy(&item.Question, &p.Question); err != nil {
		return nil, fmt.Errorf("failed to map question %d: %w", p.Question.ID, err)
	}
	if p.MachineAnswer != nil {
		item.LLMAnswer = &dto.AnswerResponse{}
		if err := copier.Copy(item.LLMAnswer, p.MachineAnswer); err != nil {
			return nil, fmt.Errorf("failed to map machine answer %d: %w", p.MachineAnswer.ID, err)
		}
	}
	return &item, nil
}

func toMachineValidationResponses(results []model.MachineValidation) ([]dto.MachineValidationResponse, error) {
	resp := make([]dto.MachineValidationResponse, 0, len(results))
	if err := copier.Copy(&resp, &results); err != nil {
		return nil, fmt.Errorf("failed to map machine validations: %w", err)
	}
	return resp, nil
}

func toValidatedTagResponses(tags []model.ValidatedTag) ([]dto.ValidatedTagResponse, error) {
	resp := make([]dto.ValidatedTagResponse, 0, len(tags))
	if err := copier.Copy(&resp, &tags); err != nil {
		return nil, fmt.Errorf("failed to map validated tags: %w", err)
	}
	return resp, nil
}
