package support

import "context"

type Repository interface {
	// NextNumber devuelve el siguiente valor de la secuencia de tickets.
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, t Ticket) error
	// Update guarda cabecera (estado, prioridad, fechas); no toca mensajes.
	Update(ctx context.Context, t Ticket) error
	AddMessage(ctx context.Context, ticketID string, m Message) error
	// GetByID devuelve el ticket con sus mensajes en orden cronológico.
	GetByID(ctx context.Context, id string) (Ticket, error)
	// List devuelve tickets sin mensajes, más recientes primero. userID/status vacíos = todos.
	List(ctx context.Context, userID string, st Status, limit, offset int) ([]Ticket, int, error)
	CountOpen(ctx context.Context) (int, error)
}
