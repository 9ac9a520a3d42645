package model

import "time"

// MachineValidation is a judgment produced by the generation service. Several
// may exist for the same answer, one per invocation.
type MachineValidation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AnswerID  uint      `json:"answer_id" gorm:"not null;index"`
	Score     float64   `json:"score" gorm:"not null"`
	IsCorrect bool      `json:"is_correct" gorm:"not null"`
	Feedback  string    `json:"feedback" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (MachineValidation) TableName() string {
	return "llm_validations"
}
