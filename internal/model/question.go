package model

import "time"

type Question struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatorID uint      `json:"creator_id" gorm:"not null;index"`
	ThemeID   uint      `json:"theme_id" gorm:"not null;index"`
	Theme     Theme     `json:"theme,omitempty" gorm:"foreignKey:ThemeID"`
	Tag       string    `json:"tag,omitempty" gorm:"size:100"` // assigned once at creation
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
}
