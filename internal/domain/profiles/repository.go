package profiles

import "context"

type Repository interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
	GetMany(ctx context.Context, userIDs []string) ([]Profile, error)
	List(ctx context.Context, f ListFilter) ([]Profile, int, error)
}
