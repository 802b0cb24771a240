package matching

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/ports/notify"
)

// fakeEmbedder proyecta el texto sobre un vocabulario fijo (bag of words).
type fakeEmbedder struct {
	calls int
	err   error
}

var vocab = []string{"dog", "cat", "schnauzer", "gris", "siames", "collar", "rojo", "miraflores", "surco"}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	text = strings.ToLower(text)
	vec := make([]float32, len(vocab))
	for i, w := range vocab {
		if strings.Contains(text, w) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (e *fakeEmbedder) Name() string { return "fake" }

type fakePets map[string]pets.Pet

func (f fakePets) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := f[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

// fakeStore hace lo mismo que el store en memoria: filtra por estado/especie y ordena por coseno.
type fakeStore struct {
	vecs map[string][]float32
	pets fakePets
}

func (s *fakeStore) Upsert(ctx context.Context, petID, model string, vec []float32) error {
	s.vecs[petID] = vec
	return nil
}

func (s *fakeStore) Get(ctx context.Context, petID string) ([]float32, error) {
	v, ok := s.vecs[petID]
	if !ok {
		return nil, ErrNoEmbedding
	}
	return v, nil
}

func (s *fakeStore) Nearest(ctx context.Context, q Query) ([]Hit, error) {
	out := []Hit{}
	for id, v := range s.vecs {
		p := s.pets[id]
		if id == q.ExcludeID || (q.Species != "" && p.Species != q.Species) {
			continue
		}
		okStatus := false
		for _, st := range q.Statuses {
			okStatus = okStatus || st == p.Status
		}
		if !okStatus {
			continue
		}
		if score := Cosine(q.Vector, v); score >= q.MinScore {
			out = append(out, Hit{PetID: id, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type recordingPublisher struct{ events []notify.Event }

func (p *recordingPublisher) Publish(ctx context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

func fixture() (fakePets, *fakeStore) {
	ps := fakePets{
		"lost-1": {ID: "lost-1", Status: pets.StatusLost, Species: pets.SpeciesDog, Breed: "Schnauzer", Color: "gris", Description: "collar rojo", Location: pets.Location{District: "Miraflores"}},
		"found-1": {ID: "found-1", Status: pets.StatusFound, Species: pets.SpeciesDog, Breed: "Schnauzer", Color: "gris", Description: "collar rojo", Location: pets.Location{District: "Miraflores"}},
		"found-2": {ID: "found-2", Status: pets.StatusSighted, Species: pets.SpeciesDog, Breed: "Schnauzer", Color: "gris", Location: pets.Location{District: "Surco"}},
		"found-cat": {ID: "found-cat", Status: pets.StatusFound, Species: pets.SpeciesCat, Breed: "Siames", Description: "collar rojo", Location: pets.Location{District: "Miraflores"}},
		"lost-2": {ID: "lost-2", Status: pets.StatusLost, Species: pets.SpeciesDog, Breed: "Schnauzer", Color: "gris", Description: "collar rojo", Location: pets.Location{District: "Miraflores"}},
	}
	return ps, &fakeStore{vecs: map[string][]float32{}, pets: ps}
}

func TestEmbeddingText(t *testing.T) {
	p := pets.Pet{Species: pets.SpeciesDog, Breed: "Schnauzer", Color: " gris ", Sex: pets.SexUnknown, Location: pets.Location{District: "Surco"}}
	assert.Equal(t, "dog. Schnauzer. gris. Surco", EmbeddingText(p))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestService_PotentialMatches(t *testing.T) {
	ps, store := fixture()
	emb := &fakeEmbedder{}
	svc := NewService(emb, store, ps, nil, nil, 0.5)
	ctx := context.Background()

	for _, id := range []string{"found-1", "found-2", "found-cat", "lost-2"} {
		require.NoError(t, svc.Index(ctx, ps[id]))
	}

	// lost-1 no está indexado: se calcula al vuelo.
	got, err := svc.PotentialMatches(ctx, "lost-1", 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.Pet.ID)
	}
	// Solo encontrados/avistados de la misma especie, ordenados por similitud.
	assert.Equal(t, []string{"found-1", "found-2"}, ids)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	_, err = store.Get(ctx, "lost-1")
	assert.NoError(t, err, "missing embedding should be stored on demand")
}

func TestService_PotentialMatches_BelowThresholdExcluded(t *testing.T) {
	ps, store := fixture()
	// Misma especie y estado complementario, pero casi sin rasgos en común (coseno ~0.41).
	ps["found-far"] = pets.Pet{ID: "found-far", Status: pets.StatusFound, Species: pets.SpeciesDog, Location: pets.Location{District: "Callao"}}
	ctx := context.Background()

	strict := NewService(&fakeEmbedder{}, store, ps, nil, nil, 0.5)
	for _, id := range []string{"lost-1", "found-1", "found-2", "found-far"} {
		require.NoError(t, strict.Index(ctx, ps[id]))
	}

	got, err := strict.PotentialMatches(ctx, "lost-1", 10)
	require.NoError(t, err)
	for _, m := range got {
		assert.NotEqual(t, "found-far", m.Pet.ID)
		assert.GreaterOrEqual(t, m.Score, 0.5)
	}
	assert.Len(t, got, 2)

	loose := NewService(&fakeEmbedder{}, store, ps, nil, nil, 0.3)
	got, err = loose.PotentialMatches(ctx, "lost-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "found-far", got[2].Pet.ID)
	assert.InDelta(t, 0.408, got[2].Score, 0.01)
}

func TestService_PotentialMatches_AdoptionHasNoCandidates(t *testing.T) {
	ps, store := fixture()
	ps["adopt"] = pets.Pet{ID: "adopt", Status: pets.StatusAdoption, Species: pets.SpeciesDog}
	svc := NewService(&fakeEmbedder{}, store, ps, nil, nil, 0)

	got, err := svc.PotentialMatches(context.Background(), "adopt", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Index_PublishesMatchFound(t *testing.T) {
	ps, store := fixture()
	pub := &recordingPublisher{}
	svc := NewService(&fakeEmbedder{}, store, ps, pub, nil, 0.9)
	ctx := context.Background()

	require.NoError(t, svc.Index(ctx, ps["found-1"]))
	assert.Empty(t, pub.events)

	require.NoError(t, svc.Index(ctx, ps["lost-1"]))
	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventMatchFound, pub.events[0].Type)
	assert.Equal(t, "lost-1", pub.events[0].SubjectID)
	assert.Equal(t, []string{"found-1"}, pub.events[0].Data["candidates"])
}

func TestService_Search(t *testing.T) {
	ps, store := fixture()
	svc := NewService(&fakeEmbedder{}, store, ps, nil, nil, 0.3)
	ctx := context.Background()
	for id := range ps {
		require.NoError(t, svc.Index(ctx, ps[id]))
	}

	got, err := svc.Search(ctx, "gato siames con collar rojo", SearchFilter{Species: pets.SpeciesCat})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "found-cat", got[0].Pet.ID)

	_, err = svc.Search(ctx, "  ", SearchFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Disabled(t *testing.T) {
	ps, store := fixture()
	svc := NewService(nil, store, ps, nil, nil, 0)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.Index(ctx, ps["lost-1"]), ErrDisabled)
	_, err := svc.PotentialMatches(ctx, "lost-1", 5)
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = svc.Search(ctx, "perro", SearchFilter{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestService_EmbedderErrorPropagates(t *testing.T) {
	ps, store := fixture()
	boom := errors.New("quota exceeded")
	svc := NewService(&fakeEmbedder{err: boom}, store, ps, nil, nil, 0)

	assert.ErrorIs(t, svc.Index(context.Background(), ps["lost-1"]), boom)
}
