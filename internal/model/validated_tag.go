package model

import "time"

type ValidatedTag struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_validated_tags_unique"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_validated_tags_unique"`
	Tag        string    `json:"tag" gorm:"size:100;not null;uniqueIndex:idx_validated_tags_unique"`
	Score      float64   `json:"score" gorm:"not null;uniqueIndex:idx_validated_tags_unique"`
	CreatedAt  time.Time `json:"created_at"`
}
