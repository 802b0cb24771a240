// Package matching busca coincidencias entre reportes (perdido ↔ encontrado) por
// similitud semántica de sus descripciones.
package matching

import (
	"context"
	"errors"

	"pet-reunite/internal/domain/pets"
)

var (
	// ErrDisabled: no hay motor de embeddings configurado.
	ErrDisabled     = errors.New("matching disabled")
	ErrNoEmbedding  = errors.New("embedding not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Query es una búsqueda vectorial. El store filtra y ordena; la app no re-rankea.
type Query struct {
	Vector    []float32
	Statuses  []pets.Status
	Species   pets.Species
	ExcludeID string
	MinScore  float64
	Limit     int
}

// Hit es un resultado del store: similitud coseno en [-1, 1].
type Hit struct {
	PetID string
	Score float64
}

// Store guarda embeddings y resuelve vecinos (pgvector o memoria).
type Store interface {
	Upsert(ctx context.Context, petID, model string, vec []float32) error
	Get(ctx context.Context, petID string) ([]float32, error)
	Nearest(ctx context.Context, q Query) ([]Hit, error)
}

// PetReader es lo que matching necesita de pets.
type PetReader interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

// Match es un reporte candidato con su similitud.
type Match struct {
	Pet   pets.Pet
	Score float64
}
