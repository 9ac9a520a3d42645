package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/culturallm/backend/internal/dto"
	"github.com/culturallm/backend/internal/model"
	"github.com/culturallm/backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

const DefaultLeaderboardSize = 10

type UserService interface {
	Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*dto.UserResponse, error)
	// Leaderboard ranks active users by score, starting from 1.
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error) {
	user := model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		log.Warn().Err(err).Str("username", user.Username).Msg("Failed to register user")
		return nil, translateDBError(err, "failed to register user %q", user.Username)
	}
	log.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("User registered")
	return toUserResponse(&user)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "failed to load user %d", id)
	}
	return toUserResponse(user)
}

func (s *userService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	users, err := s.users.FindTopActive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:         i + 1,
			UserID:       u.ID,
			Username:     u.Username,
			Score:        u.Score,
			ScoreDisplay: model.FormatScore(u.Score),
			Badges:       u.Badges.Labels(),
			Level:        model.LevelForScore(u.Score).Current.Name,
		})
	}
	return entries, nil
}

func toUserResponse(user *model.User) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		return nil, fmt.Errorf("failed to map user %d: %w", user.ID, err)
	}
	resp.Badges = user.Badges.Labels()
	resp.ScoreDisplay = model.FormatScore(user.Score)

	lp := model.LevelForScore(user.Score)
	resp.Level = dto.LevelResponse{
		Name:     lp.Current.Name,
		MinScore: lp.Current.MinScore,
		Progress: lp.Progress,
	}
	if lp.Next != nil {
		resp.Level.NextLevel = lp.Next.Name
		resp.Level.NextMinScore = lp.Next.MinScore
	}
	return &resp, nil
}
