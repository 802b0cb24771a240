package moderation

import "context"

type Repository interface {
	Create(ctx context.Context, r Report) error
	Update(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	// FindPending busca un reporte pendiente del mismo usuario sobre el mismo contenido.
	FindPending(ctx context.Context, reporterUserID string, t TargetType, targetID string) (Report, bool, error)
	// List filtra por estado (vacío = todos), más antiguos primero.
	List(ctx context.Context, st Status, limit, offset int) ([]Report, int, error)
	CountByStatus(ctx context.Context, st Status) (int, error)
}
