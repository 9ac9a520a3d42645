package model

import "time"

// Answer is either a user's answer (UserID set) or the single machine answer
// of a question (UserID nil, IsLLMAnswer true).
type Answer struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	QuestionID  uint      `json:"question_id" gorm:"not null;index;uniqueIndex:idx_answers_question_user;uniqueIndex:idx_answers_machine_question,where:is_llm_answer = true"`
	Question    Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	UserID      *uint     `json:"user_id,omitempty" gorm:"uniqueIndex:idx_answers_question_user"`
	IsLLMAnswer bool      `json:"is_llm_answer" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthoredBy reports whether userID wrote the answer. Machine answers have no author.
func (a *Answer) AuthoredBy(userID uint) bool {
	return a.UserID != nil && *a.UserID == userID
}
