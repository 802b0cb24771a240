package memory

import (
	"context"
	"sort"
	"sync"

	"pet-reunite/internal/domain/moderation"
)

type reportRepo struct {
	mu   sync.RWMutex
	byID map[string]moderation.Report
}

func NewReportRepo() moderation.Repository {
	return &reportRepo{byID: map[string]moderation.Report{}}
}

func (r *reportRepo) Create(ctx context.Context, rep moderation.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rep.ID] = rep
	return nil
}

func (r *reportRepo) Update(ctx context.Context, rep moderation.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rep.ID]; !ok {
		return moderation.ErrNotFound
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (moderation.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.byID[id]
	if !ok {
		return moderation.Report{}, moderation.ErrNotFound
	}
	return rep, nil
}

func (r *reportRepo) FindPending(ctx context.Context, reporterUserID string, t moderation.TargetType, targetID string) (moderation.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rep := range r.byID {
		if rep.Status == moderation.StatusPending &&
			rep.ReporterUserID == reporterUserID &&
			rep.TargetType == t && rep.TargetID == targetID {
			return rep, true, nil
		}
	}
	return moderation.Report{}, false, nil
}

func (r *reportRepo) List(ctx context.Context, st moderation.Status, limit, offset int) ([]moderation.Report, int, error) {
	r.mu.RLock()
	all := make([]moderation.Report, 0)
	for _, rep := range r.byID {
		if st == "" || rep.Status == st {
			all = append(all, rep)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	out, total := page(all, limit, offset)
	return out, total, nil
}

func (r *reportRepo) CountByStatus(ctx context.Context, st moderation.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rep := range r.byID {
		if rep.Status == st {
			n++
		}
	}
	return n, nil
}
