package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/logger"
)

const reunitedWindow = 30 * 24 * time.Hour

type Service struct {
	audit AuditRepository
	src   Sources
	log   logger.Logger
	now   func() time.Time
}

func NewService(auditRepo AuditRepository, src Sources, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{audit: auditRepo, src: src, log: log, now: time.Now}
}

// SetSources completa las fuentes del dashboard. El audit log se crea antes que los
// servicios que lo usan, así que las fuentes llegan después.
func (s *Service) SetSources(src Sources) { s.src = src }

// Record implementa audit.Recorder. Un fallo se loguea y no corta la acción.
func (s *Service) Record(ctx context.Context, adminUserID, action, targetType, targetID string, details map[string]any) {
	e := AuditEntry{
		ID:          uuid.NewString(),
		AdminUserID: adminUserID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Details:     details,
		CreatedAt:   s.now(),
	}
	if err := s.audit.Create(context.WithoutCancel(ctx), e); err != nil {
		s.log.Error("audit record failed", map[string]any{
			"action":    action,
			"target_id": targetID,
			"admin_id":  adminUserID,
			"err":       err,
		})
	}
}

func (s *Service) ListAudit(ctx context.Context, f AuditFilter) ([]AuditEntry, int, error) {
	return s.audit.List(ctx, f)
}

// Dashboard calcula los contadores en paralelo; el primer error cancela el resto.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	d := Dashboard{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)

	if s.src.Pets != nil {
		g.Go(func() error {
			byStatus, err := s.src.Pets.CountOpenByStatus(gctx)
			if err != nil {
				return err
			}
			d.OpenPetsByStatus = byStatus
			for _, n := range byStatus {
				d.OpenPetsTotal += n
			}
			return nil
		})
		g.Go(func() (err error) {
			d.ReunitedLast30Days, err = s.src.Pets.CountClosedSince(gctx, now.Add(-reunitedWindow))
			return err
		})
	}
	if s.src.Reports != nil {
		g.Go(func() (err error) {
			d.PendingReports, err = s.src.Reports.CountPending(gctx)
			return err
		})
	}
	if s.src.Tickets != nil {
		g.Go(func() (err error) {
			d.OpenTickets, err = s.src.Tickets.CountOpen(gctx)
			return err
		})
	}
	if s.src.Businesses != nil {
		g.Go(func() (err error) {
			d.UnverifiedBusinesses, err = s.src.Businesses.CountUnverified(gctx)
			return err
		})
	}
	if s.src.Users != nil {
		g.Go(func() (err error) {
			d.TotalUsers, err = s.src.Users.Count(gctx)
			return err
		})
	}
	if s.src.Campaigns != nil {
		g.Go(func() (err error) {
			d.UpcomingCampaigns, err = s.src.Campaigns.CountUpcoming(gctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	if d.OpenPetsByStatus == nil {
		d.OpenPetsByStatus = map[pets.Status]int{}
	}
	return d, nil
}
