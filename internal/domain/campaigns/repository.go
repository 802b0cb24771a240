package campaigns

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c Campaign) error
	Update(ctx context.Context, c Campaign) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Campaign, error)
	// List ordena por StartsAt ascendente.
	List(ctx context.Context, f ListFilter) ([]Campaign, int, error)
	CountUpcoming(ctx context.Context, now time.Time) (int, error)
}
