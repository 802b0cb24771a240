package admin

import (
	"context"
	"time"

	"pet-reunite/internal/domain/pets"
)

// AuditEntry registra una acción de administración.
type AuditEntry struct {
	ID          string
	AdminUserID string
	Action      string
	TargetType  string
	TargetID    string
	Details     map[string]any
	CreatedAt   time.Time
}

type AuditFilter struct {
	AdminUserID string
	TargetType  string
	TargetID    string
	Limit       int
	Offset      int
}

type AuditRepository interface {
	Create(ctx context.Context, e AuditEntry) error
	// List más recientes primero.
	List(ctx context.Context, f AuditFilter) ([]AuditEntry, int, error)
}

// Dashboard son los contadores del panel de admin.
type Dashboard struct {
	OpenPetsByStatus     map[pets.Status]int
	OpenPetsTotal        int
	ReunitedLast30Days   int
	PendingReports       int
	OpenTickets          int
	UnverifiedBusinesses int
	TotalUsers           int
	UpcomingCampaigns    int
	GeneratedAt          time.Time
}

// Fuentes de los contadores; las implementan los servicios de cada módulo.
type (
	PetStats interface {
		CountOpenByStatus(ctx context.Context) (map[pets.Status]int, error)
		CountClosedSince(ctx context.Context, since time.Time) (int, error)
	}
	ReportStats interface {
		CountPending(ctx context.Context) (int, error)
	}
	TicketStats interface {
		CountOpen(ctx context.Context) (int, error)
	}
	BusinessStats interface {
		CountUnverified(ctx context.Context) (int, error)
	}
	UserStats interface {
		Count(ctx context.Context) (int, error)
	}
	CampaignStats interface {
		CountUpcoming(ctx context.Context) (int, error)
	}
)

type Sources struct {
	Pets       PetStats
	Reports    ReportStats
	Tickets    TicketStats
	Businesses BusinessStats
	Users      UserStats
	Campaigns  CampaignStats
}
