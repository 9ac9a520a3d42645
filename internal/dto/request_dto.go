package dto

// CreateValidationRequest is a human judgment of another user's answer.
type CreateValidationRequest struct {
	AnswerID  uint    `json:"answer_id" binding:"required"`
	Score     float64 `json:"score" binding:"min=0,max=10"`
	IsCorrect bool    `json:"is_correct"`
	Feedback  *string `json:"feedback"`
}

// LLMValidateTextRequest judges unsaved text against the question's machine answer.
type LLMValidateTextRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	AnswerText string `json:"answer_text" binding:"required"`
}

type CreateQuestionRequest struct {
	Text    string `json:"text" binding:"required,max=2000"`
	ThemeID uint   `json:"theme_id" binding:"required"`
}

type ListQuestionsQuery struct {
	Skip    int   `form:"skip" binding:"min=0"`
	Limit   int   `form:"limit" binding:"omitempty,min=1,max=100"`
	ThemeID *uint `form:"theme_id"`
}

type GenerateTagRequest struct {
	Question string `json:"question" binding:"required"`
}

type CreateAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Text       string `json:"text" binding:"required,max=2000"`
}

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
}

// LimitQuery is shared by the paged listing endpoints.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}
