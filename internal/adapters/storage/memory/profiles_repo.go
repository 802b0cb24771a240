package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-reunite/internal/domain/profiles"
)

type profileRepo struct {
	mu   sync.RWMutex
	byID map[string]profiles.Profile
}

func NewProfileRepo() profiles.Repository {
	return &profileRepo{byID: map[string]profiles.Profile{}}
}

func (r *profileRepo) Get(ctx context.Context, userID string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[userID]
	if !ok {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	return p, nil
}

func (r *profileRepo) Upsert(ctx context.Context, p profiles.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.UserID] = p
	return nil
}

func (r *profileRepo) GetMany(ctx context.Context, userIDs []string) ([]profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]profiles.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *profileRepo) List(ctx context.Context, f profiles.ListFilter) ([]profiles.Profile, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	all := make([]profiles.Profile, 0)
	for _, p := range r.byID {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.Banned != nil && p.Banned != *f.Banned {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.DisplayName), q) &&
			!strings.Contains(strings.ToLower(p.Email), q) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	out, total := page(all, f.Limit, f.Offset)
	return out, total, nil
}
