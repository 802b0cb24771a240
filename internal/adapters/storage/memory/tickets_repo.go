package memory

import (
	"context"
	"sort"
	"sync"

	"pet-reunite/internal/domain/support"
)

type ticketRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[string]support.Ticket
}

func NewTicketRepo() support.Repository {
	return &ticketRepo{byID: map[string]support.Ticket{}}
}

func (r *ticketRepo) NextNumber(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *ticketRepo) Create(ctx context.Context, t support.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Messages = append([]support.Message(nil), t.Messages...)
	r.byID[t.ID] = t
	return nil
}

func (r *ticketRepo) Update(ctx context.Context, t support.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[t.ID]
	if !ok {
		return support.ErrNotFound
	}
	t.Messages = cur.Messages
	r.byID[t.ID] = t
	return nil
}

func (r *ticketRepo) AddMessage(ctx context.Context, ticketID string, m support.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[ticketID]
	if !ok {
		return support.ErrNotFound
	}
	t.Messages = append(append([]support.Message(nil), t.Messages...), m)
	r.byID[ticketID] = t
	return nil
}

func (r *ticketRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return support.Ticket{}, support.ErrNotFound
	}
	t.Messages = append([]support.Message(nil), t.Messages...)
	return t, nil
}

func (r *ticketRepo) List(ctx context.Context, userID string, st support.Status, limit, offset int) ([]support.Ticket, int, error) {
	r.mu.RLock()
	all := make([]support.Ticket, 0)
	for _, t := range r.byID {
		if userID != "" && t.UserID != userID {
			continue
		}
		if st != "" && t.Status != st {
			continue
		}
		t.Messages = nil
		all = append(all, t)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	out, total := page(all, limit, offset)
	return out, total, nil
}

func (r *ticketRepo) CountOpen(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.byID {
		if t.Status == support.StatusOpen || t.Status == support.StatusInProgress {
			n++
		}
	}
	return n, nil
}
