package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TagService interface {
	// RecordValidatedTag is a no-op for an empty tag and for a row identical
	// to one already stored.
	RecordValidatedTag(ctx context.Context, userID, questionID uint, tag string, score float64) error
	ForValidator(ctx context.Context, userID uint) ([]model.ValidatedTag, error)
	ForAuthor(ctx context.Context, userID uint) ([]model.ValidatedTag, error)
}

type tagService struct {
	tags repository.ValidatedTagRepository
}

func NewTagService(tags repository.ValidatedTagRepository) TagService {
	return &tagService{tags: tags}
}

func (s *tagService) RecordValidatedTag(ctx context.Context, userID, questionID uint, tag string, score float64) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}

	row := &model.ValidatedTag{UserID: userID, QuestionID: questionID, Tag: tag, Score: score}
	exists, err := s.tags.Exists(ctx, row)
	if err != nil {
		return fmt.Errorf("failed to look up validated tag: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.tags.Create(ctx, row); err != nil {
		// A concurrent writer stored the same row first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to record validated tag: %w", err)
	}
	log.Debug().Uint("userID", userID).Uint("questionID", questionID).Str("tag", tag).Msg("Validated tag recorded")
	return nil
}

func (s *tagService) ForValidator(ctx context.Context, userID uint) ([]model.ValidatedTag, error) {
	tags, err := s.tags.FindForValidator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validator tags for user %d: %w", userID, err)
	}
	return tags, nil
}

func (s *tagService) ForAuthor(ctx context.Context, userID uint) ([]model.ValidatedTag, error) {
	tags, err := s.tags.FindForAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list author tags for user %d: %w", userID, err)
	}
	return tags, nil
}
