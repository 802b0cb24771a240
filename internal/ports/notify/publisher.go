package notify

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados.
const (
	EventPetReported   = "pet.reported"
	EventPetClosed     = "pet.closed"
	EventMatchFound    = "match.found"
	EventCommentAdded  = "comment.added"
	EventTicketCreated = "ticket.created"
)

type Event struct {
	Type      string         `json:"type"`
	SubjectID string         `json:"subject_id"`
	ActorID   string         `json:"actor_id,omitempty"`
	At        time.Time      `json:"at"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher es fire-and-forget: un error no debe cortar el caso de uso.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop descarta eventos.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
