package memory

import (
	"context"
	"sort"
	"sync"

	"pet-reunite/internal/domain/gamification"
)

type pointsKey struct {
	user   string
	action gamification.Action
	ref    string
}

type pointsRepo struct {
	mu      sync.RWMutex
	entries []gamification.Entry
	seen    map[pointsKey]struct{}
}

func NewPointsRepo() gamification.Repository {
	return &pointsRepo{seen: map[pointsKey]struct{}{}}
}

func (r *pointsRepo) Add(ctx context.Context, e gamification.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := pointsKey{e.UserID, e.Action, e.RefID}
	if _, dup := r.seen[k]; dup {
		return gamification.ErrDuplicate
	}
	r.seen[k] = struct{}{}
	r.entries = append(r.entries, e)
	return nil
}

func (r *pointsRepo) TotalFor(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			total += e.Points
		}
	}
	return total, nil
}

func (r *pointsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]gamification.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]gamification.Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID != userID {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *pointsRepo) Leaderboard(ctx context.Context, limit int) ([]gamification.Standing, error) {
	r.mu.RLock()
	totals := map[string]int{}
	for _, e := range r.entries {
		totals[e.UserID] += e.Points
	}
	r.mu.RUnlock()

	out := make([]gamification.Standing, 0, len(totals))
	for u, t := range totals {
		out = append(out, gamification.Standing{UserID: u, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
