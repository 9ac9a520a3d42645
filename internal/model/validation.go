package model

import "time"

type Validation struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AnswerID    uint      `json:"answer_id" gorm:"not null;uniqueIndex:idx_validations_answer_validator"`
	Answer      Answer    `json:"-" gorm:"foreignKey:AnswerID"`
	ValidatorID uint      `json:"validator_id" gorm:"not null;uniqueIndex:idx_validations_answer_validator;index"`
	Score       float64   `json:"score" gorm:"not null"`
	IsCorrect   bool      `json:"is_correct" gorm:"not null"`
	Feedback    *string   `json:"feedback,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
