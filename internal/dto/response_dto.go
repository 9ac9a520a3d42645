package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type ThemeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type QuestionResponse struct {
	ID        uint          `json:"id"`
	Text      string        `json:"text"`
	CreatorID uint          `json:"creator_id"`
	ThemeID   uint          `json:"theme_id"`
	Theme     ThemeResponse `json:"theme"`
	Tag       string        `json:"tag,omitempty"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

type GeneratedQuestionResponse struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

type TagResponse struct {
	Tag string `json:"tag"`
}

type AnswerResponse struct {
	ID          uint      `json:"id"`
	Text        string    `json:"text"`
	QuestionID  uint      `json:"question_id"`
	UserID      *uint     `json:"user_id"`
	IsLLMAnswer bool      `json:"is_llm_answer"`
	CreatedAt   time.Time `json:"created_at"`
}

type ValidationResponse struct {
	ID          uint      `json:"id"`
	AnswerID    uint      `json:"answer_id"`
	ValidatorID uint      `json:"validator_id"`
	Score       float64   `json:"score"`
	IsCorrect   bool      `json:"is_correct"`
	Feedback    *string   `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MachineValidationResponse has ID and AnswerID zero for unsaved text judgments.
type MachineValidationResponse struct {
	ID        uint      `json:"id"`
	AnswerID  uint      `json:"answer_id"`
	Score     float64   `json:"score"`
	IsCorrect bool      `json:"is_correct"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

type PendingValidationResponse struct {
	Answer    AnswerResponse   `json:"answer"`
	Question  QuestionResponse `json:"question"`
	LLMAnswer *AnswerResponse  `json:"llm_answer"`
}

type ValidatedTagResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	QuestionID uint      `json:"question_id"`
	Tag        string    `json:"tag"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

type LevelResponse struct {
	Name         string  `json:"name"`
	MinScore     int     `json:"min_score"`
	NextLevel    string  `json:"next_level,omitempty"`
	NextMinScore int     `json:"next_min_score,omitempty"`
	Progress     float64 `json:"progress"`
}

type UserResponse struct {
	ID           uint          `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	Score        int           `json:"score"`
	ScoreDisplay string        `json:"score_display"`
	Badges       []string      `json:"badges"`
	IsActive     bool          `json:"is_active"`
	Level        LevelResponse `json:"level"`
	CreatedAt    time.Time     `json:"created_at"`
}

type LeaderboardEntry struct {
	Rank         int      `json:"rank"`
	UserID       uint     `json:"user_id"`
	Username     string   `json:"username"`
	Score        int      `json:"score"`
	ScoreDisplay string   `json:"score_display"`
	Badges       []string `json:"badges"`
	Level        string   `json:"level"`
}
