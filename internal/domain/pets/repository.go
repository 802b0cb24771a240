package pets

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	// Update escribe p solo si la fila sigue con prevUpdatedAt; si otro la cambió
	// entre lectura y escritura devuelve ErrBadState.
	Update(ctx context.Context, p Pet, prevUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, f ListFilter) ([]Pet, int, error)

	// Para el dashboard de admin.
	CountOpenByStatus(ctx context.Context) (map[Status]int, error)
	// CountClosedSince cuenta reencuentros (status reunited) cerrados desde since.
	CountClosedSince(ctx context.Context, since time.Time) (int, error)
}
