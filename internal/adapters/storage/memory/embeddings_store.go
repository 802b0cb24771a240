package memory

import (
	"context"
	"sort"
	"sync"

	"pet-reunite/internal/domain/matching"
)

// embeddingStore implementa matching.Store con fuerza bruta sobre todos los vectores.
// Los filtros de estado/especie se resuelven leyendo el repo de pets.
type embeddingStore struct {
	mu   sync.RWMutex
	vecs map[string][]float32
	pets matching.PetReader
}

func NewEmbeddingStore(petReader matching.PetReader) matching.Store {
	return &embeddingStore{vecs: map[string][]float32{}, pets: petReader}
}

func (s *embeddingStore) Upsert(ctx context.Context, petID, model string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vecs[petID] = append([]float32(nil), vec...)
	return nil
}

func (s *embeddingStore) Get(ctx context.Context, petID string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vecs[petID]
	if !ok {
		return nil, matching.ErrNoEmbedding
	}
	return append([]float32(nil), v...), nil
}

func (s *embeddingStore) Nearest(ctx context.Context, q matching.Query) ([]matching.Hit, error) {
	s.mu.RLock()
	candidates := make(map[string][]float32, len(s.vecs))
	for id, v := range s.vecs {
		if id != q.ExcludeID {
			candidates[id] = v
		}
	}
	s.mu.RUnlock()

	out := make([]matching.Hit, 0)
	for id, v := range candidates {
		p, err := s.pets.GetByID(ctx, id)
		if err != nil {
			// Reporte borrado: el vector queda huérfano y se ignora.
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, p.Status) {
			continue
		}
		if q.Species != "" && p.Species != q.Species {
			continue
		}
		score := matching.Cosine(q.Vector, v)
		if score < q.MinScore {
			continue
		}
		out = append(out, matching.Hit{PetID: id, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PetID < out[j].PetID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
