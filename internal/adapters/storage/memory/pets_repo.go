package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/geo"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet, prevUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	if !cur.UpdatedAt.Equal(prevUpdatedAt) {
		return pets.ErrBadState
	}
	r.byID[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return pets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(p), nil
}

// List ordena por cercanía si hay Near; si no, más recientes primero.
func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		p    pets.Pet
		dist float64
	}
	q := strings.ToLower(f.Query)
	district := strings.ToLower(f.District)

	matched := make([]scored, 0)
	for _, p := range r.byID {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
			continue
		}
		if f.Species != "" && p.Species != f.Species {
			continue
		}
		if f.ReporterUserID != "" && p.ReporterUserID != f.ReporterUserID {
			continue
		}
		if district != "" && strings.ToLower(p.Location.District) != district {
			continue
		}
		if q != "" && !petMatchesQuery(p, q) {
			continue
		}
		s := scored{p: p}
		if f.Near != nil {
			s.dist = geo.DistanceKm(*f.Near, geo.Point{Lat: p.Location.Lat, Lng: p.Location.Lng})
			if s.dist > f.RadiusKm {
				continue
			}
		}
		matched = append(matched, s)
	}

	// Mismo orden que Postgres, con id como desempate para que la paginación sea estable.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Near != nil && a.dist != b.dist {
			return a.dist < b.dist
		}
		if !a.p.CreatedAt.Equal(b.p.CreatedAt) {
			return a.p.CreatedAt.After(b.p.CreatedAt)
		}
		return a.p.ID < b.p.ID
	})

	all := make([]pets.Pet, 0, len(matched))
	for _, s := range matched {
		all = append(all, clonePet(s.p))
	}
	out, total := page(all, f.Limit, f.Offset)
	return out, total, nil
}

func (r *petRepo) CountOpenByStatus(ctx context.Context) (map[pets.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[pets.Status]int{}
	for _, p := range r.byID {
		if p.Status.Open() {
			out[p.Status]++
		}
	}
	return out, nil
}

func (r *petRepo) CountClosedSince(ctx context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.byID {
		if p.Status == pets.StatusReunited && p.ClosedAt != nil && !p.ClosedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func containsStatus(list []pets.Status, s pets.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func petMatchesQuery(p pets.Pet, q string) bool {
	for _, field := range []string{p.Name, p.Breed, p.Color, p.Description, p.Location.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func clonePet(p pets.Pet) pets.Pet {
	p.PhotoURLs = append([]string(nil), p.PhotoURLs...)
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		p.ClosedAt = &t
	}
	return p
}
