package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/support"
)

type TicketsRepo struct {
	db *sqlx.DB
}

func NewTicketsRepo(db *sqlx.DB) *TicketsRepo {
	return &TicketsRepo{db: db}
}

type ticketRow struct {
	ID         string       `db:"id"`
	Number     string       `db:"number"`
	UserID     string       `db:"user_id"`
	Subject    string       `db:"subject"`
	Category   string       `db:"category"`
	Priority   string       `db:"priority"`
	Status     string       `db:"status"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	ResolvedAt sql.NullTime `db:"resolved_at"`
	Total      int          `db:"total"`
}

type messageRow struct {
	ID           string    `db:"id"`
	TicketID     string    `db:"ticket_id"`
	AuthorUserID string    `db:"author_user_id"`
	Body         string    `db:"body"`
	FromStaff    bool      `db:"from_staff"`
	CreatedAt    time.Time `db:"created_at"`
}

const ticketColumns = `id, number, user_id, subject, category, priority, status, created_at, updated_at, resolved_at`

func toTicketRow(t support.Ticket) ticketRow {
	return ticketRow{
		ID:         t.ID,
		Number:     t.Number,
		UserID:     t.UserID,
		Subject:    t.Subject,
		Category:   string(t.Category),
		Priority:   string(t.Priority),
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		ResolvedAt: toNullTime(t.ResolvedAt),
	}
}

func (r ticketRow) toDomain() support.Ticket {
	t := support.Ticket{
		ID:        r.ID,
		Number:    r.Number,
		UserID:    r.UserID,
		Subject:   r.Subject,
		Category:  support.Category(r.Category),
		Priority:  support.Priority(r.Priority),
		Status:    support.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ResolvedAt.Valid {
		at := r.ResolvedAt.Time
		t.ResolvedAt = &at
	}
	return t
}

func toMessageRow(ticketID string, m support.Message) messageRow {
	return messageRow{
		ID:           m.ID,
		TicketID:     ticketID,
		AuthorUserID: m.AuthorUserID,
		Body:         m.Body,
		FromStaff:    m.FromStaff,
		CreatedAt:    m.CreatedAt,
	}
}

const insertMessageSQL = `
	INSERT INTO support_messages (id, ticket_id, author_user_id, body, from_staff, created_at)
	VALUES (:id, :ticket_id, :author_user_id, :body, :from_staff, :created_at)`

func (r *TicketsRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT nextval('support_ticket_number_seq')`)
	return n, err
}

// Create guarda la cabecera y los mensajes iniciales en una sola transacción.
func (r *TicketsRepo) Create(ctx context.Context, t support.Ticket) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO support_tickets (`+ticketColumns+`)
		VALUES (:id, :number, :user_id, :subject, :category, :priority, :status, :created_at, :updated_at, :resolved_at)
	`, toTicketRow(t)); err != nil {
		return err
	}
	for _, m := range t.Messages {
		if _, err := tx.NamedExecContext(ctx, insertMessageSQL, toMessageRow(t.ID, m)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *TicketsRepo) Update(ctx context.Context, t support.Ticket) error {
	if !isUUID(t.ID) {
		return support.ErrNotFound
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE support_tickets SET
			priority = :priority, status = :status,
			updated_at = :updated_at, resolved_at = :resolved_at
		WHERE id = :id
	`, toTicketRow(t))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return support.ErrNotFound
	}
	return nil
}

func (r *TicketsRepo) AddMessage(ctx context.Context, ticketID string, m support.Message) error {
	if !isUUID(ticketID) {
		return support.ErrNotFound
	}
	_, err := r.db.NamedExecContext(ctx, insertMessageSQL, toMessageRow(ticketID, m))
	return err
}

func (r *TicketsRepo) GetByID(ctx context.Context, id string) (support.Ticket, error) {
	if !isUUID(id) {
		return support.Ticket{}, support.ErrNotFound
	}
	var row ticketRow
	err := r.db.GetContext(ctx, &row, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return support.Ticket{}, support.ErrNotFound
	}
	if err != nil {
		return support.Ticket{}, err
	}

	var msgs []messageRow
	if err := r.db.SelectContext(ctx, &msgs, `
		SELECT id, ticket_id, author_user_id, body, from_staff, created_at
		FROM support_messages
		WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`, id); err != nil {
		return support.Ticket{}, err
	}

	t := row.toDomain()
	for _, m := range msgs {
		t.Messages = append(t.Messages, support.Message{
			ID:           m.ID,
			AuthorUserID: m.AuthorUserID,
			Body:         m.Body,
			FromStaff:    m.FromStaff,
			CreatedAt:    m.CreatedAt,
		})
	}
	return t, nil
}

func (r *TicketsRepo) List(ctx context.Context, userID string, st support.Status, limit, offset int) ([]support.Ticket, int, error) {
	var a args
	if userID != "" {
		a.where("user_id = " + a.add(userID))
	}
	if st != "" {
		a.where("status = " + a.add(string(st)))
	}
	var rows []ticketRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+ticketColumns+`, COUNT(*) OVER() AS total
		FROM support_tickets`+a.clause()+`
		ORDER BY created_at DESC
		LIMIT `+a.add(limitOrDefault(limit))+` OFFSET `+a.add(offset), a.vals...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]support.Ticket, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, row.toDomain())
		total = row.Total
	}
	return out, total, nil
}

func (r *TicketsRepo) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM support_tickets WHERE status IN ('open', 'in_progress')`)
	return n, err
}
