package matching

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/embeddings"
	"pet-reunite/internal/ports/notify"
)

const (
	DefaultThreshold = 0.75
	defaultLimit     = 10
	maxLimit         = 50
	notifyLimit      = 5
)

type Service struct {
	embedder  embeddings.Embedder
	store     Store
	pets      PetReader
	publisher notify.Publisher
	log       logger.Logger
	threshold float64
	now       func() time.Time
}

// NewService: embedder puede ser nil (matching deshabilitado, las operaciones devuelven ErrDisabled).
func NewService(embedder embeddings.Embedder, store Store, petReader PetReader, publisher notify.Publisher, log logger.Logger, threshold float64) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Service{
		embedder:  embedder,
		store:     store,
		pets:      petReader,
		publisher: publisher,
		log:       log,
		threshold: threshold,
		now:       time.Now,
	}
}

func (s *Service) Enabled() bool { return s.embedder != nil && s.store != nil }

// EmbeddingText arma el texto que se vectoriza. Campos vacíos se omiten.
func EmbeddingText(p pets.Pet) string {
	parts := []string{
		string(p.Species),
		p.Breed,
		p.Color,
		string(p.Size),
		string(p.Sex),
		p.Name,
		p.Description,
		p.Location.District,
	}
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" && s != string(pets.SexUnknown) {
			out = append(out, s)
		}
	}
	return strings.Join(out, ". ")
}

// Index calcula y guarda el embedding del reporte. Si el reporte está abierto y ya
// tiene candidatos, publica match.found. Implementa pets.Indexer.
func (s *Service) Index(ctx context.Context, p pets.Pet) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	vec, err := s.embed(ctx, p)
	if err != nil {
		return err
	}

	if !p.Status.Open() || p.Status == pets.StatusAdoption {
		return nil
	}
	hits, err := s.store.Nearest(ctx, s.candidateQuery(p, vec, notifyLimit))
	if err != nil {
		s.log.Warn("match lookup failed", map[string]any{"pet_id": p.ID, "err": err})
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.PetID)
	}
	err = s.publisher.Publish(ctx, notify.Event{
		Type:      notify.EventMatchFound,
		SubjectID: p.ID,
		ActorID:   p.ReporterUserID,
		At:        s.now(),
		Data:      map[string]any{"candidates": ids, "top_score": hits[0].Score},
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"type": notify.EventMatchFound, "err": err})
	}
	return nil
}

func (s *Service) embed(ctx context.Context, p pets.Pet) ([]float32, error) {
	text := EmbeddingText(p)
	if text == "" {
		return nil, ErrInvalidInput
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, p.ID, s.embedder.Name(), vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// PotentialMatches devuelve reportes abiertos del estado complementario y misma
// especie con similitud >= umbral, ordenados como los devuelve el store.
func (s *Service) PotentialMatches(ctx context.Context, petID string, limit int) ([]Match, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if len(complementOf(p.Status)) == 0 {
		return []Match{}, nil
	}

	vec, err := s.store.Get(ctx, p.ID)
	if errors.Is(err, ErrNoEmbedding) {
		// Reporte anterior a matching o falló el indexado: calcular ahora.
		vec, err = s.embed(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	hits, err := s.store.Nearest(ctx, s.candidateQuery(p, vec, clampLimit(limit)))
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, hits), nil
}

type SearchFilter struct {
	Species pets.Species
	Limit   int
}

// Search vectoriza texto libre ("perro marrón con collar rojo en Surco") y devuelve
// reportes abiertos por similitud.
func (s *Service) Search(ctx context.Context, query string, f SearchFilter) ([]Match, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return nil, ErrInvalidInput
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.Nearest(ctx, Query{
		Vector:   vec,
		Statuses: []pets.Status{pets.StatusLost, pets.StatusFound, pets.StatusSighted, pets.StatusAdoption},
		Species:  f.Species,
		MinScore: s.threshold,
		Limit:    clampLimit(f.Limit),
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, hits), nil
}

func (s *Service) candidateQuery(p pets.Pet, vec []float32, limit int) Query {
	return Query{
		Vector:    vec,
		Statuses:  complementOf(p.Status),
		Species:   p.Species,
		ExcludeID: p.ID,
		MinScore:  s.threshold,
		Limit:     limit,
	}
}

// resolve trae los reportes de cada hit; si alguno se borró entre medio se omite.
func (s *Service) resolve(ctx context.Context, hits []Hit) []Match {
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		p, err := s.pets.GetByID(ctx, h.PetID)
		if err != nil {
			continue
		}
		out = append(out, Match{Pet: p, Score: h.Score})
	}
	return out
}

// complementOf: perdido busca encontrados/avistados y viceversa.
func complementOf(st pets.Status) []pets.Status {
	switch st {
	case pets.StatusLost:
		return []pets.Status{pets.StatusFound, pets.StatusSighted}
	case pets.StatusFound, pets.StatusSighted:
		return []pets.Status{pets.StatusLost}
	default:
		return nil
	}
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
