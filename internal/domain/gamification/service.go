package gamification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Award suma puntos por una acción. Es idempotente por (user, action, ref):
// volver a otorgar lo mismo devuelve (0, nil).
func (s *Service) Award(ctx context.Context, userID string, action Action, refID string) (int, error) {
	userID = strings.TrimSpace(userID)
	refID = strings.TrimSpace(refID)
	if userID == "" || refID == "" {
		return 0, ErrInvalidInput
	}
	pts := PointsFor(action)
	if pts == 0 {
		return 0, ErrInvalidInput
	}

	err := s.repo.Add(ctx, Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		RefID:     refID,
		Points:    pts,
		CreatedAt: s.now(),
	})
	if errors.Is(err, ErrDuplicate) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return pts, nil
}

type Summary struct {
	UserID string
	Total  int
	Level  Level
	Recent []Entry
}

func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Summary{}, ErrInvalidInput
	}

	total, err := s.repo.TotalFor(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.repo.ListByUser(ctx, userID, 20)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		UserID: userID,
		Total:  total,
		Level:  LevelFor(total),
		Recent: recent,
	}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.Leaderboard(ctx, limit)
}
