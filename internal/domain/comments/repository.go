package comments

import "context"

type Repository interface {
	Create(ctx context.Context, c Comment) error
	GetByID(ctx context.Context, id string) (Comment, error)
	// ListByPet devuelve el hilo en orden cronológico (más antiguos primero).
	ListByPet(ctx context.Context, petID string, limit, offset int) ([]Comment, int, error)
	Delete(ctx context.Context, id string) error
}
