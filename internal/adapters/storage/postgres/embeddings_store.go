package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"pet-reunite/internal/domain/matching"
)

// EmbeddingStore guarda vectores en pgvector. El operador <=> es distancia coseno,
// así que la similitud es 1 - distancia.
type EmbeddingStore struct {
	db *sql.DB
}

func NewEmbeddingStore(db *sql.DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

func (s *EmbeddingStore) Upsert(ctx context.Context, petID, model string, vec []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pet_embeddings (pet_id, model, embedding, updated_at)
		VALUES ($1, $2, $3::vector, now())
		ON CONFLICT (pet_id) DO UPDATE
		SET model = EXCLUDED.model, embedding = EXCLUDED.embedding, updated_at = now()
	`, petID, model, pgvector.NewVector(vec))
	return err
}

func (s *EmbeddingStore) Get(ctx context.Context, petID string) ([]float32, error) {
	if !isUUID(petID) {
		return nil, matching.ErrNoEmbedding
	}
	var v pgvector.Vector
	err := s.db.QueryRowContext(ctx, `
		SELECT embedding FROM pet_embeddings WHERE pet_id = $1
	`, petID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNoEmbedding
	}
	if err != nil {
		return nil, err
	}
	return v.Slice(), nil
}

func (s *EmbeddingStore) Nearest(ctx context.Context, q matching.Query) ([]matching.Hit, error) {
	var a args
	vec := a.add(pgvector.NewVector(q.Vector)) + "::vector"

	if len(q.Statuses) > 0 {
		sts := make([]string, 0, len(q.Statuses))
		for _, st := range q.Statuses {
			sts = append(sts, string(st))
		}
		a.where("p.status = ANY(" + a.add(pq.Array(sts)) + ")")
	}
	if q.Species != "" {
		a.where("p.species = " + a.add(string(q.Species)))
	}
	if q.ExcludeID != "" {
		a.where("e.pet_id <> " + a.add(q.ExcludeID) + "::uuid")
	}
	a.where(fmt.Sprintf("1 - (e.embedding <=> %s) >= %s", vec, a.add(q.MinScore)))

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.pet_id, 1 - (e.embedding <=> `+vec+`) AS score
		FROM pet_embeddings e
		JOIN pets p ON p.id = e.pet_id`+a.clause()+`
		ORDER BY e.embedding <=> `+vec+`
		LIMIT `+a.add(limit), a.vals...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Hit, 0)
	for rows.Next() {
		var h matching.Hit
		if err := rows.Scan(&h.PetID, &h.Score); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
