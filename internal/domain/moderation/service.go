package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/audit"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already reported")
	ErrBadState     = errors.New("invalid state")
)

type PointsAwarder interface {
	Award(ctx context.Context, userID string, action gamification.Action, refID string) (int, error)
}

type Service struct {
	repo    Repository
	remover ContentRemover
	points  PointsAwarder
	audit   audit.Recorder
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, remover ContentRemover, points PointsAwarder, rec audit.Recorder, log logger.Logger) *Service {
	if remover == nil {
		remover = Removers{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, remover: remover, points: points, audit: rec, log: log, now: time.Now}
}

type CreateInput struct {
	TargetType TargetType `json:"target_type" validate:"required,oneof=pet comment business campaign user"`
	TargetID   string     `json:"target_id" validate:"required,max=64"`
	Reason     Reason     `json:"reason" validate:"required,oneof=spam inappropriate fraud duplicate other"`
	Details    string     `json:"details" validate:"max=1000"`
}

// Create registra un reporte. Un mismo usuario no puede tener dos pendientes sobre el mismo contenido.
func (s *Service) Create(ctx context.Context, reporterUserID string, in CreateInput) (Report, error) {
	if strings.TrimSpace(reporterUserID) == "" {
		return Report{}, ErrInvalidInput
	}
	in.TargetID = strings.TrimSpace(in.TargetID)
	if err := validate.Struct(in); err != nil {
		return Report{}, err
	}
	if in.TargetType == TargetUser && in.TargetID == reporterUserID {
		return Report{}, &validate.ValidationError{Field: "target_id", Message: "no puedes reportarte a ti mismo"}
	}
	if in.Reason == ReasonOther && strings.TrimSpace(in.Details) == "" {
		return Report{}, &validate.ValidationError{Field: "details", Message: "es obligatorio"}
	}

	if _, found, err := s.repo.FindPending(ctx, reporterUserID, in.TargetType, in.TargetID); err != nil {
		return Report{}, err
	} else if found {
		return Report{}, ErrDuplicate
	}

	r := Report{
		ID:             uuid.NewString(),
		ReporterUserID: reporterUserID,
		TargetType:     in.TargetType,
		TargetID:       in.TargetID,
		Reason:         in.Reason,
		Details:        strings.TrimSpace(in.Details),
		Status:         StatusPending,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, st Status, limit, offset int) ([]Report, int, error) {
	return s.repo.List(ctx, st, limit, offset)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, StatusPending)
}

type ResolveInput struct {
	Resolution    string `json:"resolution" validate:"max=1000"`
	RemoveContent bool   `json:"remove_content"`
}

// Resolve cierra un reporte pendiente como válido. Con RemoveContent borra el contenido
// (o suspende al usuario) antes de marcarlo resuelto; si eso falla el reporte sigue pendiente.
func (s *Service) Resolve(ctx context.Context, id, adminUserID string, in ResolveInput) (Report, error) {
	r, err := s.pending(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Report{}, err
	}

	if in.RemoveContent {
		if err := s.remover.RemoveContent(ctx, r.TargetType, r.TargetID); err != nil {
			return Report{}, err
		}
	}

	r = s.close(r, StatusResolved, adminUserID, in.Resolution)
	if err := s.repo.Update(ctx, r); err != nil {
		return Report{}, err
	}

	s.audit.Record(ctx, adminUserID, "report.resolve", string(r.TargetType), r.TargetID, map[string]any{
		"report_id":      r.ID,
		"remove_content": in.RemoveContent,
	})
	if s.points != nil {
		if _, err := s.points.Award(ctx, r.ReporterUserID, gamification.ActionReportResolved, r.ID); err != nil {
			s.log.Warn("award points failed", map[string]any{"report_id": r.ID, "err": err})
		}
	}
	return r, nil
}

// Dismiss descarta un reporte pendiente.
func (s *Service) Dismiss(ctx context.Context, id, adminUserID, resolution string) (Report, error) {
	r, err := s.pending(ctx, id)
	if err != nil {
		return Report{}, err
	}

	r = s.close(r, StatusDismissed, adminUserID, resolution)
	if err := s.repo.Update(ctx, r); err != nil {
		return Report{}, err
	}
	s.audit.Record(ctx, adminUserID, "report.dismiss", string(r.TargetType), r.TargetID, map[string]any{"report_id": r.ID})
	return r, nil
}

func (s *Service) pending(ctx context.Context, id string) (Report, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if r.Status != StatusPending {
		return Report{}, ErrBadState
	}
	return r, nil
}

func (s *Service) close(r Report, st Status, adminUserID, resolution string) Report {
	now := s.now()
	r.Status = st
	r.ResolvedBy = adminUserID
	r.Resolution = strings.TrimSpace(resolution)
	r.ResolvedAt = &now
	return r
}
