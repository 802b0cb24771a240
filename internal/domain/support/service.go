package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/audit"
	"pet-reunite/internal/ports/notify"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo      Repository
	publisher notify.Publisher
	audit     audit.Recorder
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher notify.Publisher, rec audit.Recorder, log logger.Logger) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, publisher: publisher, audit: rec, log: log, now: time.Now}
}

type CreateInput struct {
	Subject     string   `json:"subject" validate:"required,min=5,max=140"`
	Category    Category `json:"category" validate:"required,oneof=account report business bug other"`
	Description string   `json:"description" validate:"required,max=4000"`
}

// Create abre un ticket; la descripción es el primer mensaje.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Ticket, error) {
	if strings.TrimSpace(userID) == "" {
		return Ticket{}, ErrInvalidInput
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return Ticket{}, err
	}

	seq, err := s.repo.NextNumber(ctx)
	if err != nil {
		return Ticket{}, err
	}

	now := s.now()
	t := Ticket{
		ID:       uuid.NewString(),
		Number:   FormatNumber(seq),
		UserID:   userID,
		Subject:  in.Subject,
		Category: in.Category,
		Priority: priorityFor(in.Category),
		Status:   StatusOpen,
		Messages: []Message{{
			ID:           uuid.NewString(),
			AuthorUserID: userID,
			Body:         in.Description,
			CreatedAt:    now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Ticket{}, err
	}

	err = s.publisher.Publish(ctx, notify.Event{
		Type:      notify.EventTicketCreated,
		SubjectID: t.ID,
		ActorID:   userID,
		At:        now,
		Data:      map[string]any{"number": t.Number, "category": t.Category},
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"type": notify.EventTicketCreated, "err": err})
	}
	return t, nil
}

// Cuentas y bugs entran con prioridad alta.
func priorityFor(c Category) Priority {
	switch c {
	case CategoryAccount, CategoryBug:
		return PriorityHigh
	case CategoryOther:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Get: dueño o admin.
func (s *Service) Get(ctx context.Context, id, actorUserID string, admin bool) (Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ticket{}, ErrNotFound
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !admin && t.UserID != actorUserID {
		// No revelar existencia.
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]Ticket, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(ctx, userID, "", limit, offset)
}

func (s *Service) List(ctx context.Context, st Status, limit, offset int) ([]Ticket, int, error) {
	return s.repo.List(ctx, "", st, limit, offset)
}

func (s *Service) CountOpen(ctx context.Context) (int, error) {
	return s.repo.CountOpen(ctx)
}

type ReplyInput struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Reply agrega un mensaje. Si el dueño responde un ticket resuelto se reabre;
// los tickets cerrados no aceptan mensajes.
func (s *Service) Reply(ctx context.Context, id, actorUserID string, admin bool, in ReplyInput) (Ticket, error) {
	t, err := s.Get(ctx, id, actorUserID, admin)
	if err != nil {
		return Ticket{}, err
	}
	in.Body = strings.TrimSpace(in.Body)
	if err := validate.Struct(in); err != nil {
		return Ticket{}, err
	}
	if t.Status == StatusClosed {
		return Ticket{}, ErrBadState
	}

	now := s.now()
	fromStaff := admin && t.UserID != actorUserID
	m := Message{
		ID:           uuid.NewString(),
		AuthorUserID: actorUserID,
		Body:         in.Body,
		FromStaff:    fromStaff,
		CreatedAt:    now,
	}
	if err := s.repo.AddMessage(ctx, t.ID, m); err != nil {
		return Ticket{}, err
	}
	t.Messages = append(t.Messages, m)

	switch {
	case !fromStaff && t.Status == StatusResolved:
		t.Status = StatusOpen
		t.ResolvedAt = nil
	case fromStaff && t.Status == StatusOpen:
		// Primera respuesta del staff: pasa a en curso.
		t.Status = StatusInProgress
	}
	t.UpdatedAt = now
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// SetStatus (admin) aplica la tabla de transiciones.
func (s *Service) SetStatus(ctx context.Context, id, adminUserID string, to Status) (Ticket, error) {
	t, err := s.Get(ctx, id, adminUserID, true)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(t.Status, to) {
		return Ticket{}, ErrBadState
	}

	now := s.now()
	from := t.Status
	t.Status = to
	t.UpdatedAt = now
	switch to {
	case StatusResolved:
		t.ResolvedAt = &now
	case StatusOpen, StatusInProgress:
		t.ResolvedAt = nil
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	s.audit.Record(ctx, adminUserID, "ticket.status", "ticket", t.ID, map[string]any{"from": from, "to": to})
	return t, nil
}

// SetPriority (admin).
func (s *Service) SetPriority(ctx context.Context, id, adminUserID string, p Priority) (Ticket, error) {
	if err := validate.Var("priority", string(p), "oneof=low normal high"); err != nil {
		return Ticket{}, err
	}
	t, err := s.Get(ctx, id, adminUserID, true)
	if err != nil {
		return Ticket{}, err
	}
	t.Priority = p
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}
