package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"pet-reunite/internal/domain/businesses"
	"pet-reunite/internal/platform/geo"
)

type businessRepo struct {
	mu      sync.RWMutex
	byID    map[string]businesses.Business
	ratings businesses.RatingRepository
}

// NewBusinessRepo recibe el repo de calificaciones para recalcular el agregado.
func NewBusinessRepo(ratings businesses.RatingRepository) businesses.Repository {
	return &businessRepo{byID: map[string]businesses.Business{}, ratings: ratings}
}

func (r *businessRepo) Create(ctx context.Context, b businesses.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID] = cloneBusiness(b)
	return nil
}

func (r *businessRepo) Update(ctx context.Context, b businesses.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[b.ID]; !ok {
		return businesses.ErrNotFound
	}
	r.byID[b.ID] = cloneBusiness(b)
	return nil
}

func (r *businessRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return businesses.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *businessRepo) GetByID(ctx context.Context, id string) (businesses.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return businesses.Business{}, businesses.ErrNotFound
	}
	return cloneBusiness(b), nil
}

func (r *businessRepo) List(ctx context.Context, f businesses.ListFilter) ([]businesses.Business, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	district := strings.ToLower(strings.TrimSpace(f.District))
	all := make([]businesses.Business, 0)
	for _, b := range r.byID {
		if f.Type != "" && b.Type != f.Type {
			continue
		}
		if f.OwnerUserID != "" && b.OwnerUserID != f.OwnerUserID {
			continue
		}
		if f.VerifiedOnly && !b.Verified {
			continue
		}
		if district != "" && strings.ToLower(b.District) != district {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) {
			continue
		}
		if f.Near != nil && geo.DistanceKm(*f.Near, geo.Point{Lat: b.Lat, Lng: b.Lng}) > f.RadiusKm {
			continue
		}
		all = append(all, cloneBusiness(b))
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Verified != b.Verified {
			return a.Verified
		}
		if a.RatingAvg != b.RatingAvg {
			return a.RatingAvg > b.RatingAvg
		}
		return a.Name < b.Name
	})
	out, total := page(all, f.Limit, f.Offset)
	return out, total, nil
}

func (r *businessRepo) CountUnverified(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, b := range r.byID {
		if !b.Verified {
			n++
		}
	}
	return n, nil
}

// RefreshRating calcula el agregado con el lock tomado: el último en escribir ve
// todas las calificaciones ya guardadas.
func (r *businessRepo) RefreshRating(ctx context.Context, id string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return 0, 0, businesses.ErrNotFound
	}
	avg, count, err := r.ratings.Aggregate(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	b.RatingAvg = math.Round(avg*100) / 100
	b.RatingCount = count
	r.byID[id] = b
	return b.RatingAvg, b.RatingCount, nil
}

func cloneBusiness(b businesses.Business) businesses.Business {
	b.Products = append([]businesses.Product(nil), b.Products...)
	return b
}

type ratingKey struct{ business, user string }

type ratingRepo struct {
	mu    sync.RWMutex
	byKey map[ratingKey]businesses.Rating
}

func NewRatingRepo() businesses.RatingRepository {
	return &ratingRepo{byKey: map[ratingKey]businesses.Rating{}}
}

func (r *ratingRepo) Upsert(ctx context.Context, rt businesses.Rating) (businesses.Rating, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := ratingKey{rt.BusinessID, rt.UserID}
	prev, exists := r.byKey[k]
	if exists {
		rt.ID = prev.ID
		rt.CreatedAt = prev.CreatedAt
	}
	r.byKey[k] = rt
	return rt, !exists, nil
}

func (r *ratingRepo) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]businesses.Rating, int, error) {
	r.mu.RLock()
	all := make([]businesses.Rating, 0)
	for k, rt := range r.byKey {
		if k.business == businessID {
			all = append(all, rt)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	out, total := page(all, limit, offset)
	return out, total, nil
}

func (r *ratingRepo) Aggregate(ctx context.Context, businessID string) (float64, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum, n := 0, 0
	for k, rt := range r.byKey {
		if k.business == businessID {
			sum += rt.Stars
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}
