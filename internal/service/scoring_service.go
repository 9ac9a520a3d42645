package service

import (
	"context"
	"math"

	"github.com/culturallm/backend/internal/metrics"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	PointsCorrectJudgment   = 10
	PointsIncorrectJudgment = 5
	// AuthorBonusMinScore is the lowest validation score that earns the author a bonus.
	AuthorBonusMinScore = 7.0
)

type ScoringService interface {
	// WithTx binds the service to an open transaction so awards commit or
	// roll back with it.
	WithTx(tx *gorm.DB) ScoringService
	// Award adds points to the user's score and merges newly reached badges.
	// Badges already held are never removed. Unknown users yield ErrNotFound.
	Award(ctx context.Context, userID uint, points int) error
}

type scoringService struct {
	db      *gorm.DB
	users   repository.UserRepository
	metrics *metrics.Metrics
}

func NewScoringService(db *gorm.DB, users repository.UserRepository, m *metrics.Metrics) ScoringService {
	return &scoringService{db: db, users: users, metrics: m}
}

func (s *scoringService) WithTx(tx *gorm.DB) ScoringService {
	return &scoringService{db: tx, users: s.users.WithTx(tx), metrics: s.metrics}
}

func (s *scoringService) Award(ctx context.Context, userID uint, points int) error {
	var unlocked []string
	var total int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		user, err := users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			return translateDBError(err, "failed to load user %d", userID)
		}

		total = user.Score + points
		badges := user.Badges.Union(model.BadgesForScore(total))
		if err := users.AddScore(ctx, userID, points, badges); err != nil {
			return translateDBError(err, "failed to update score of user %d", userID)
		}
		unlocked = badges.Added(user.Badges)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("userID", userID).Int("points", points).Msg("Award failed")
		return err
	}

	s.metrics.PointsAwarded(points)
	s.metrics.BadgesUnlocked(unlocked)
	event := log.Info().Uint("userID", userID).Int("points", points).Int("score", total)
	if len(unlocked) > 0 {
		event = event.Strs("unlockedBadges", unlocked)
	}
	event.Msg("Points awarded")
	return nil
}

// AuthorBonus returns the points an answer author earns from a validation.
// Machine answers have no author and never earn a bonus.
func AuthorBonus(answer *model.Answer, score float64, isCorrect bool) int {
	if answer.UserID == nil || !isCorrect || score < AuthorBonusMinScore {
		return 0
	}
	return int(math.RoundToEven(score * 2))
}

// ValidatorPoints returns the points a validator earns for a judgment.
func ValidatorPoints(isCorrect bool) int {
	if isCorrect {
		return PointsCorrectJudgment
	}
	return PointsIncorrectJudgment
}
