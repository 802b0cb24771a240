package gamification

import (
	"context"
	"errors"
)

// ErrDuplicate lo devuelve Add cuando (user, action, ref) ya existe.
var ErrDuplicate = errors.New("duplicate points entry")

type Repository interface {
	Add(ctx context.Context, e Entry) error
	TotalFor(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
	Leaderboard(ctx context.Context, limit int) ([]Standing, error)
}
