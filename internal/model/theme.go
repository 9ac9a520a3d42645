package model

// Theme is a cultural subject area questions are filed under.
type Theme struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

func (Theme) TableName() string {
	return "cultural_themes"
}
