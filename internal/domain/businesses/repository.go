package businesses

import "context"

type Repository interface {
	Create(ctx context.Context, b Business) error
	Update(ctx context.Context, b Business) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Business, error)
	// List ordena: verificados primero, luego mejor calificados, luego nombre.
	List(ctx context.Context, f ListFilter) ([]Business, int, error)
	CountUnverified(ctx context.Context) (int, error)
	// RefreshRating recalcula rating_avg (2 decimales) y rating_count desde las
	// calificaciones guardadas, sin tocar el resto del negocio.
	RefreshRating(ctx context.Context, id string) (avg float64, count int, err error)
}

type RatingRepository interface {
	// Upsert inserta o reemplaza la calificación de (BusinessID, UserID) y devuelve
	// la fila guardada: en un reemplazo conserva ID y CreatedAt originales.
	Upsert(ctx context.Context, r Rating) (stored Rating, created bool, err error)
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]Rating, int, error)
	// Aggregate devuelve promedio y cantidad de calificaciones del negocio.
	Aggregate(ctx context.Context, businessID string) (avg float64, count int, err error)
}
