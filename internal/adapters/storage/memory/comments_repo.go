package memory

import (
	"context"
	"sort"
	"sync"

	"pet-reunite/internal/domain/comments"
)

type commentRepo struct {
	mu   sync.RWMutex
	byID map[string]comments.Comment
}

func NewCommentRepo() comments.Repository {
	return &commentRepo{byID: map[string]comments.Comment{}}
}

func (r *commentRepo) Create(ctx context.Context, c comments.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (comments.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return comments.Comment{}, comments.ErrNotFound
	}
	return c, nil
}

func (r *commentRepo) ListByPet(ctx context.Context, petID string, limit, offset int) ([]comments.Comment, int, error) {
	r.mu.RLock()
	all := make([]comments.Comment, 0)
	for _, c := range r.byID {
		if c.PetID == petID {
			all = append(all, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	out, total := page(all, limit, offset)
	return out, total, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return comments.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
