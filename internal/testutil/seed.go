package testutil

import (
	"fmt"
	"testing"

	"github.com/culturallm/backend/internal/model"
	"gorm.io/gorm"
)

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

func User(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: fmt.Sprintf("%s@example.com", username), IsActive: true}
	mustCreate(t, db, u)
	return u
}

func Theme(t *testing.T, db *gorm.DB, name string) *model.Theme {
	t.Helper()
	th := &model.Theme{Name: name}
	mustCreate(t, db, th)
	return th
}

// Question seeds an active question. An empty tag means untagged.
func Question(t *testing.T, db *gorm.DB, creatorID, themeID uint, text, tag string) *model.Question {
	t.Helper()
	q := &model.Question{Text: text, CreatorID: creatorID, ThemeID: themeID, Tag: tag, IsActive: true}
	mustCreate(t, db, q)
	return q
}

func Answer(t *testing.T, db *gorm.DB, questionID, userID uint, text string) *model.Answer {
	t.Helper()
	uid := userID
	a := &model.Answer{Text: text, QuestionID: questionID, UserID: &uid}
	mustCreate(t, db, a)
	return a
}

func MachineAnswer(t *testing.T, db *gorm.DB, questionID uint, text string) *model.Answer {
	t.Helper()
	a := &model.Answer{Text: text, QuestionID: questionID, IsLLMAnswer: true}
	mustCreate(t, db, a)
	return a
}

// Reload fetches the current row for a seeded user.
func Reload(t *testing.T, db *gorm.DB, userID uint) *model.User {
	t.Helper()
	var u model.User
	if err := db.First(&u, userID).Error; err != nil {
		t.Fatalf("reload user %d: %v", userID, err)
	}
	return &u
}
