package campaigns

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/audit"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state")
)

type PointsAwarder interface {
	Award(ctx context.Context, userID string, action gamification.Action, refID string) (int, error)
}

type Service struct {
	repo   Repository
	points PointsAwarder
	audit  audit.Recorder
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, points PointsAwarder, rec audit.Recorder, log logger.Logger) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, points: points, audit: rec, log: log, now: time.Now}
}

type Input struct {
	Title        string    `json:"title" validate:"required,min=5,max=140"`
	Type         Type      `json:"type" validate:"required,oneof=sterilization adoption vaccination other"`
	Description  string    `json:"description" validate:"max=4000"`
	Address      string    `json:"address" validate:"required,max=200"`
	District     string    `json:"district" validate:"required,max=80"`
	Lat          float64   `json:"lat" validate:"latitude"`
	Lng          float64   `json:"lng" validate:"longitude"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
	ContactPhone string    `json:"contact_phone" validate:"omitempty,phone_pe"`
	ImageURL     string    `json:"image_url" validate:"omitempty,url"`
}

func (s *Service) check(in Input) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !in.EndsAt.After(in.StartsAt) {
		return &validate.ValidationError{Field: "ends_at", Message: "debe ser posterior al inicio"}
	}
	if in.EndsAt.Before(s.now()) {
		return &validate.ValidationError{Field: "ends_at", Message: "la campaña ya terminó"}
	}
	// Sin mapa se acepta la dirección sola.
	if in.Lat != 0 || in.Lng != 0 {
		if !(geo.Point{Lat: in.Lat, Lng: in.Lng}).Valid() {
			return &validate.ValidationError{Field: "lat", Message: "latitud inválida"}
		}
	}
	return nil
}

// Create deja la campaña en draft; un admin la publica.
func (s *Service) Create(ctx context.Context, organizerUserID string, in Input) (Campaign, error) {
	if strings.TrimSpace(organizerUserID) == "" {
		return Campaign{}, ErrInvalidInput
	}
	if err := s.check(in); err != nil {
		return Campaign{}, err
	}

	now := s.now()
	c := Campaign{
		ID:              uuid.NewString(),
		OrganizerUserID: organizerUserID,
		Status:          StatusDraft,
		CreatedAt:       now,
	}
	apply(&c, in)
	c.UpdatedAt = now

	if err := s.repo.Create(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

func apply(c *Campaign, in Input) {
	c.Title = strings.TrimSpace(in.Title)
	c.Type = in.Type
	c.Description = strings.TrimSpace(in.Description)
	c.Address = strings.TrimSpace(in.Address)
	c.District = strings.TrimSpace(in.District)
	c.Lat = in.Lat
	c.Lng = in.Lng
	c.StartsAt = in.StartsAt.UTC()
	c.EndsAt = in.EndsAt.UTC()
	c.ContactPhone = validate.NormalizePhone(in.ContactPhone)
	c.ImageURL = strings.TrimSpace(in.ImageURL)
}

func (s *Service) Update(ctx context.Context, id, actorUserID string, admin bool, in Input) (Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Campaign{}, err
	}
	if !admin && c.OrganizerUserID != actorUserID {
		return Campaign{}, ErrForbidden
	}
	if c.Status == StatusCancelled {
		return Campaign{}, ErrBadState
	}
	if err := s.check(in); err != nil {
		return Campaign{}, err
	}

	apply(&c, in)
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

func (s *Service) Cancel(ctx context.Context, id, actorUserID string, admin bool) (Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Campaign{}, err
	}
	if !admin && c.OrganizerUserID != actorUserID {
		return Campaign{}, ErrForbidden
	}
	if c.Status == StatusCancelled {
		return Campaign{}, ErrBadState
	}

	c.Status = StatusCancelled
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Campaign{}, err
	}
	if admin && c.OrganizerUserID != actorUserID {
		s.audit.Record(ctx, actorUserID, "campaign.cancel", "campaign", c.ID, nil)
	}
	return c, nil
}

// Publish aprueba una campaña en draft. Los puntos se otorgan recién aquí.
func (s *Service) Publish(ctx context.Context, id, adminUserID string) (Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Campaign{}, err
	}
	if c.Status != StatusDraft {
		return Campaign{}, ErrBadState
	}

	c.Status = StatusPublished
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Campaign{}, err
	}

	s.audit.Record(ctx, adminUserID, "campaign.publish", "campaign", c.ID, nil)
	if s.points != nil {
		if _, err := s.points.Award(ctx, c.OrganizerUserID, gamification.ActionCampaignCreated, c.ID); err != nil {
			s.log.Warn("award points failed", map[string]any{"campaign_id": c.ID, "err": err})
		}
	}
	return c, nil
}

// Remove borra sin chequear permisos (moderación).
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

// Get: las campañas no publicadas solo las ve el organizador o un admin (lo decide el handler).
func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Campaign{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListUpcoming devuelve campañas publicadas que no terminaron, por fecha de inicio.
func (s *Service) ListUpcoming(ctx context.Context, district string, typ Type, limit, offset int) ([]Campaign, int, error) {
	return s.repo.List(ctx, ListFilter{
		Statuses:  []Status{StatusPublished},
		District:  strings.TrimSpace(district),
		Type:      typ,
		EndsAfter: s.now(),
		Limit:     limit,
		Offset:    offset,
	})
}

func (s *Service) ListByOrganizer(ctx context.Context, userID string, limit, offset int) ([]Campaign, int, error) {
	return s.repo.List(ctx, ListFilter{OrganizerUserID: userID, Limit: limit, Offset: offset})
}

// ListByStatus para la cola de revisión del admin.
func (s *Service) ListByStatus(ctx context.Context, st Status, limit, offset int) ([]Campaign, int, error) {
	f := ListFilter{Limit: limit, Offset: offset}
	if st != "" {
		f.Statuses = []Status{st}
	}
	return s.repo.List(ctx, f)
}

func (s *Service) CountUpcoming(ctx context.Context) (int, error) {
	return s.repo.CountUpcoming(ctx, s.now())
}
