package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/culturallm/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type validationFixture struct {
	db        *gorm.DB
	svc       ValidationService
	gen       *fakeGenerator
	validator *model.User
	author    *model.User
	creator   *model.User
	question  *model.Question
	answer    *model.Answer
}

func newValidationFixture(t *testing.T, tag string) *validationFixture {
	t.Helper()
	db := testutil.DB(t)
	gen := fixedGenerator("Punteggio complessivo: 7\nFeedback: Buona risposta", nil)

	users := repository.NewUserRepository(db)
	svc := NewValidationService(
		db,
		repository.NewAnswerRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewValidationRepository(db),
		repository.NewMachineValidationRepository(db),
		NewScoringService(db, users, nil),
		NewTagService(repository.NewValidatedTagRepository(db)),
		NewLLMService(gen),
		nil,
	)

	f := &validationFixture{db: db, svc: svc, gen: gen}
	f.validator = testutil.User(t, db, "validator")
	f.author = testutil.User(t, db, "author")
	f.creator = testutil.User(t, db, "creator")
	theme := testutil.Theme(t, db, "Storia")
	f.question = testutil.Question(t, db, f.creator.ID, theme.ID, "In che anno fu unificata l'Italia?", tag)
	f.answer = testutil.Answer(t, db, f.question.ID, f.author.ID, "Nel 1861")
	return f
}

func (f *validationFixture) submit(validatorID uint, score float64, correct bool) (*model.Validation, error) {
	return f.svc.SubmitValidation(context.Background(), validatorID, SubmitValidationInput{
		AnswerID:  f.answer.ID,
		Score:     score,
		IsCorrect: correct,
	})
}

func (f *validationFixture) tagCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.ValidatedTag{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestSubmitValidationAwardsBothSides(t *testing.T) {
	f := newValidationFixture(t, "unità d'Italia")

	v, err := f.submit(f.validator.ID, 8, true)
	require.NoError(t, err)
	assert.NotZero(t, v.ID)
	assert.Equal(t, f.answer.ID, v.AnswerID)

	assert.Equal(t, 10, testutil.Reload(t, f.db, f.validator.ID).Score)
	assert.Equal(t, 16, testutil.Reload(t, f.db, f.author.ID).Score)
	assert.EqualValues(t, 1, f.tagCount(t, f.validator.ID))
	assert.EqualValues(t, 1, f.tagCount(t, f.author.ID))
}

func TestSubmitValidationBelowBonusThreshold(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.submit(f.validator.ID, 6, true)
	require.NoError(t, err)

	assert.Equal(t, 10, testutil.Reload(t, f.db, f.validator.ID).Score)
	assert.Zero(t, testutil.Reload(t, f.db, f.author.ID).Score)
	assert.Zero(t, f.tagCount(t, f.validator.ID))
}

func TestSubmitValidationIncorrectJudgment(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.submit(f.validator.ID, 9, false)
	require.NoError(t, err)

	assert.Equal(t, 5, testutil.Reload(t, f.db, f.validator.ID).Score)
	assert.Zero(t, testutil.Reload(t, f.db, f.author.ID).Score)
}

func TestSubmitValidationTwiceConflicts(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.submit(f.validator.ID, 8, true)
	require.NoError(t, err)
	_, err = f.submit(f.validator.ID, 3, false)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 10, testutil.Reload(t, f.db, f.validator.ID).Score)
}

func TestSubmitValidationOwnAnswerForbidden(t *testing.T) {
	f := newValidationFixture(t, "")

	for _, correct := range []bool{true, false} {
		_, err := f.submit(f.author.ID, 10, correct)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Zero(t, testutil.Reload(t, f.db, f.author.ID).Score)
}

func TestSubmitValidationUnknownAnswer(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.svc.SubmitValidation(context.Background(), f.validator.ID, SubmitValidationInput{AnswerID: 999, Score: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitValidationRejectsOutOfRangeScore(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.submit(f.validator.ID, 11, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitValidationRollsBackWhenValidatorMissing(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.submit(4242, 8, true)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&model.Validation{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Zero(t, testutil.Reload(t, f.db, f.author.ID).Score)
}

func TestSubmitValidationSkipsAuthorTagForQuestionCreator(t *testing.T) {
	f := newValidationFixture(t, "risorgimento")
	own := testutil.Answer(t, f.db, f.question.ID, f.creator.ID, "1861")

	_, err := f.svc.SubmitValidation(context.Background(), f.validator.ID, SubmitValidationInput{
		AnswerID: own.ID, Score: 9, IsCorrect: true,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.tagCount(t, f.validator.ID))
	assert.Zero(t, f.tagCount(t, f.creator.ID))
	assert.Equal(t, 18, testutil.Reload(t, f.db, f.creator.ID).Score)
}

// failingTags records every call and fails it.
type failingTags struct {
	calls []uint
}

func (f *failingTags) RecordValidatedTag(_ context.Context, userID, _ uint, _ string, _ float64) error {
	f.calls = append(f.calls, userID)
	return errors.New("validated_tags unavailable")
}

func (f *failingTags) ForValidator(context.Context, uint) ([]model.ValidatedTag, error) {
	return nil, errors.New("validated_tags unavailable")
}

func (f *failingTags) ForAuthor(context.Context, uint) ([]model.ValidatedTag, error) {
	return nil, errors.New("validated_tags unavailable")
}

func TestSubmitValidationKeepsValidationWhenTagRecordingFails(t *testing.T) {
	f := newValidationFixture(t, "unità d'Italia")
	tags := &failingTags{}
	users := repository.NewUserRepository(f.db)
	svc := NewValidationService(
		f.db,
		repository.NewAnswerRepository(f.db),
		repository.NewQuestionRepository(f.db),
		repository.NewValidationRepository(f.db),
		repository.NewMachineValidationRepository(f.db),
		NewScoringService(f.db, users, nil),
		tags,
		NewLLMService(f.gen),
		nil,
	)

	v, err := svc.SubmitValidation(context.Background(), f.validator.ID, SubmitValidationInput{
		AnswerID: f.answer.ID, Score: 8, IsCorrect: true,
	})
	require.NoError(t, err)
	require.NotZero(t, v.ID)

	var stored model.Validation
	require.NoError(t, f.db.First(&stored, v.ID).Error)
	assert.Equal(t, f.validator.ID, stored.ValidatorID)

	assert.Equal(t, 10, testutil.Reload(t, f.db, f.validator.ID).Score)
	assert.Equal(t, 16, testutil.Reload(t, f.db, f.author.ID).Score)
	assert.Equal(t, []uint{f.validator.ID, f.author.ID}, tags.calls)
}

func TestListPendingValidations(t *testing.T) {
	f := newValidationFixture(t, "")
	machine := testutil.MachineAnswer(t, f.db, f.question.ID, "Nel 1861, con la proclamazione del Regno")

	pending, err := f.svc.ListPendingValidations(context.Background(), f.validator.ID, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f.answer.ID, pending[0].Answer.ID)
	assert.Equal(t, f.question.ID, pending[0].Question.ID)
	assert.Equal(t, "Storia", pending[0].Question.Theme.Name)
	require.NotNil(t, pending[0].MachineAnswer)
	assert.Equal(t, machine.ID, pending[0].MachineAnswer.ID)

	_, err = f.submit(f.validator.ID, 7, true)
	require.NoError(t, err)
	pending, err = f.svc.ListPendingValidations(context.Background(), f.validator.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = f.svc.ListPendingValidations(context.Background(), f.author.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListForAnswer(t *testing.T) {
	f := newValidationFixture(t, "")
	_, err := f.submit(f.validator.ID, 7, true)
	require.NoError(t, err)

	validations, err := f.svc.ListForAnswer(context.Background(), f.answer.ID)
	require.NoError(t, err)
	require.Len(t, validations, 1)
	assert.Equal(t, f.validator.ID, validations[0].ValidatorID)
}

func TestMachineValidate(t *testing.T) {
	f := newValidationFixture(t, "")
	machine := testutil.MachineAnswer(t, f.db, f.question.ID, "Il 17 marzo 1861")
	f.gen.respond = func(prompt string, _ GenerationParams) (string, error) {
		if strings.Contains(prompt, "Risposta: Nel 1861") {
			return "Punteggio complessivo: 5\nFeedback: Incompleta", nil
		}
		return "**Punteggio complessivo:** 9\n**Feedback:** Precisa", nil
	}

	results, err := f.svc.MachineValidate(context.Background(), f.answer.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, f.answer.ID, results[0].AnswerID)
	assert.Equal(t, 5.0, results[0].Score)
	assert.False(t, results[0].IsCorrect)
	assert.Equal(t, "Incompleta", results[0].Feedback)

	assert.Equal(t, machine.ID, results[1].AnswerID)
	assert.Equal(t, 9.0, results[1].Score)
	assert.True(t, results[1].IsCorrect)
	assert.Equal(t, "Precisa", results[1].Feedback)

	var stored []model.MachineValidation
	require.NoError(t, f.db.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.NotZero(t, stored[0].ID)
	assert.Equal(t, 2, f.gen.calls())
}

func TestMachineValidateRequiresMachineAnswer(t *testing.T) {
	f := newValidationFixture(t, "")

	_, err := f.svc.MachineValidate(context.Background(), f.answer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.MachineValidate(context.Background(), 777)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.gen.calls())
}

func TestMachineValidateSurfacesGenerationErrors(t *testing.T) {
	f := newValidationFixture(t, "")
	testutil.MachineAnswer(t, f.db, f.question.ID, "Il 17 marzo 1861")

	f.gen.respond = func(string, GenerationParams) (string, error) { return "nessun punteggio", nil }
	_, err := f.svc.MachineValidate(context.Background(), f.answer.ID)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	f.gen.respond = func(string, GenerationParams) (string, error) { return "", errors.New("dial tcp: refused") }
	_, err = f.svc.MachineValidate(context.Background(), f.answer.ID)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	var n int64
	require.NoError(t, f.db.Model(&model.MachineValidation{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestMachineValidateText(t *testing.T) {
	f := newValidationFixture(t, "")
	machine := testutil.MachineAnswer(t, f.db, f.question.ID, "Il 17 marzo 1861")

	results, err := f.svc.MachineValidateText(context.Background(), f.question.ID, "  Nel   1861 ")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Zero(t, results[0].AnswerID)
	assert.Equal(t, machine.ID, results[1].AnswerID)
	assert.Equal(t, 7.0, results[0].Score)
	assert.True(t, results[0].IsCorrect)
	assert.Contains(t, f.gen.prompts[0]+f.gen.prompts[1], "Risposta: Nel 1861\n")

	var n int64
	require.NoError(t, f.db.Model(&model.MachineValidation{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = f.svc.MachineValidateText(context.Background(), f.question.ID, " \x01 ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.MachineValidateText(context.Background(), 999, "testo")
	assert.ErrorIs(t, err, ErrNotFound)
}
