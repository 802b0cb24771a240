package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-reunite/internal/domain/campaigns"
)

type campaignRepo struct {
	mu   sync.RWMutex
	byID map[string]campaigns.Campaign
}

func NewCampaignRepo() campaigns.Repository {
	return &campaignRepo{byID: map[string]campaigns.Campaign{}}
}

func (r *campaignRepo) Create(ctx context.Context, c campaigns.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

func (r *campaignRepo) Update(ctx context.Context, c campaigns.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return campaigns.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return campaigns.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (campaigns.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return campaigns.Campaign{}, campaigns.ErrNotFound
	}
	return c, nil
}

func (r *campaignRepo) List(ctx context.Context, f campaigns.ListFilter) ([]campaigns.Campaign, int, error) {
	r.mu.RLock()
	district := strings.ToLower(strings.TrimSpace(f.District))
	all := make([]campaigns.Campaign, 0)
	for _, c := range r.byID {
		if len(f.Statuses) > 0 && !containsCampaignStatus(f.Statuses, c.Status) {
			continue
		}
		if f.OrganizerUserID != "" && c.OrganizerUserID != f.OrganizerUserID {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if district != "" && strings.ToLower(c.District) != district {
			continue
		}
		if !f.EndsAfter.IsZero() && c.EndsAt.Before(f.EndsAfter) {
			continue
		}
		all = append(all, c)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].StartsAt.Before(all[j].StartsAt) })
	out, total := page(all, f.Limit, f.Offset)
	return out, total, nil
}

func (r *campaignRepo) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.byID {
		if c.Status == campaigns.StatusPublished && !c.EndsAt.Before(now) {
			n++
		}
	}
	return n, nil
}

func containsCampaignStatus(list []campaigns.Status, s campaigns.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
