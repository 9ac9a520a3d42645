package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced answer, question, theme or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for duplicate validations, answers or users.
	ErrConflict = errors.New("conflict")
	// ErrForbidden is returned when a user validates their own answer.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned for requests that fail domain checks, such as an out of range score.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedResponse is matched by every *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrServiceUnavailable is returned when the generation endpoint is unreachable or timed out.
	ErrServiceUnavailable = errors.New("generation service unavailable")
)

// MalformedResponseError carries the raw generation output that could not be parsed.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generation response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// translateDBError maps store errors onto the service taxonomy.
func translateDBError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
