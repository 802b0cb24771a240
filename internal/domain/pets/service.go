package pets

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/platform/shortid"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/notify"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state")
)

const (
	maxPhotos     = 6
	indexTimeout  = 5 * time.Second
	maxFutureSkew = time.Hour
)

// PointsAwarder suma puntos de gamificación (lo implementa gamification.Service).
type PointsAwarder interface {
	Award(ctx context.Context, userID string, action gamification.Action, refID string) (int, error)
}

// Indexer calcula y guarda el embedding del reporte (lo implementa matching.Service).
type Indexer interface {
	Index(ctx context.Context, p Pet) error
}

type Deps struct {
	Points    PointsAwarder
	Publisher notify.Publisher
	Indexer   Indexer
	Log       logger.Logger

	PublicBaseURL string
	QRBaseURL     string
}

type Service struct {
	repo Repository
	deps Deps
	now  func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Service{
		repo: repo,
		deps: deps,
		now:  time.Now,
	}
}

type CreateInput struct {
	Status       Status          `json:"status" validate:"required,oneof=lost found sighted adoption"`
	Species      Species         `json:"species" validate:"required,oneof=dog cat bird rabbit other"`
	Breed        string          `json:"breed" validate:"max=60"`
	Color        string          `json:"color" validate:"max=60"`
	Size         Size            `json:"size" validate:"omitempty,oneof=small medium large"`
	Sex          Sex             `json:"sex" validate:"omitempty,oneof=male female unknown"`
	Name         string          `json:"name" validate:"max=60"`
	Description  string          `json:"description" validate:"max=2000"`
	PhotoURLs    []string        `json:"photo_urls" validate:"max=6,dive,url"`
	Lat          float64         `json:"lat" validate:"latitude"`
	Lng          float64         `json:"lng" validate:"longitude"`
	Address      string          `json:"address" validate:"max=200"`
	District     string          `json:"district" validate:"max=80"`
	EventAt      *time.Time      `json:"event_at"`
	ContactPhone string          `json:"contact_phone" validate:"required,phone_pe"`
	Reward       decimal.Decimal `json:"reward"`
}

func (s *Service) Create(ctx context.Context, reporterUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(reporterUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if err := validate.Struct(in); err != nil {
		return Pet{}, err
	}
	if !(geo.Point{Lat: in.Lat, Lng: in.Lng}).Valid() {
		return Pet{}, &validate.ValidationError{Field: "lat", Message: "marca la ubicación en el mapa"}
	}
	if in.Reward.IsNegative() {
		return Pet{}, &validate.ValidationError{Field: "reward", Message: "debe ser mayor o igual a 0"}
	}

	now := s.now()
	eventAt := now
	if in.EventAt != nil {
		if in.EventAt.After(now.Add(maxFutureSkew)) {
			return Pet{}, &validate.ValidationError{Field: "event_at", Message: "no puede estar en el futuro"}
		}
		eventAt = *in.EventAt
	}

	sex := in.Sex
	if sex == "" {
		sex = SexUnknown
	}

	p := Pet{
		ID:             uuid.NewString(),
		ReporterUserID: reporterUserID,
		Status:         in.Status,
		Species:        in.Species,
		Breed:          strings.TrimSpace(in.Breed),
		Color:          strings.TrimSpace(in.Color),
		Size:           in.Size,
		Sex:            sex,
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		PhotoURLs:      cleanURLs(in.PhotoURLs),
		Location: Location{
			Lat:      in.Lat,
			Lng:      in.Lng,
			Address:  strings.TrimSpace(in.Address),
			District: strings.TrimSpace(in.District),
		},
		EventAt:      eventAt,
		ContactPhone: validate.NormalizePhone(in.ContactPhone),
		Reward:       in.Reward,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}

	s.afterCreate(ctx, p)
	return p, nil
}

// afterCreate: puntos, evento y embedding. Todo best-effort.
func (s *Service) afterCreate(ctx context.Context, p Pet) {
	log := s.deps.Log.With(map[string]any{"pet_id": p.ID})

	if s.deps.Points != nil {
		if _, err := s.deps.Points.Award(ctx, p.ReporterUserID, actionForStatus(p.Status), p.ID); err != nil {
			log.Warn("award points failed", map[string]any{"err": err})
		}
	}

	if s.deps.Indexer != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		if err := s.deps.Indexer.Index(ictx, p); err != nil {
			log.Warn("embedding index failed", map[string]any{"err": err})
		}
		cancel()
	}

	s.publish(ctx, notify.EventPetReported, p, map[string]any{
		"status":   p.Status,
		"species":  p.Species,
		"district": p.Location.District,
	})
}

func actionForStatus(st Status) gamification.Action {
	switch st {
	case StatusFound:
		return gamification.ActionPetFoundReported
	case StatusSighted:
		return gamification.ActionSighting
	default:
		return gamification.ActionPetReported
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Pet, error) {
	id, err := shortid.ToUUID(strings.TrimSpace(slug))
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.District = strings.TrimSpace(f.District)
	if f.Near != nil {
		if !f.Near.Valid() {
			return nil, 0, ErrInvalidInput
		}
		if f.RadiusKm <= 0 {
			f.RadiusKm = 5
		}
		if f.RadiusKm > 100 {
			f.RadiusKm = 100
		}
	}
	return s.repo.List(ctx, f)
}

func (s *Service) ListByReporter(ctx context.Context, userID string, limit, offset int) ([]Pet, int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{ReporterUserID: userID, Limit: limit, Offset: offset})
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Species      *Species         `json:"species" validate:"omitempty,oneof=dog cat bird rabbit other"`
	Breed        *string          `json:"breed" validate:"omitempty,max=60"`
	Color        *string          `json:"color" validate:"omitempty,max=60"`
	Size         *Size            `json:"size" validate:"omitempty,oneof=small medium large"`
	Sex          *Sex             `json:"sex" validate:"omitempty,oneof=male female unknown"`
	Name         *string          `json:"name" validate:"omitempty,max=60"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	PhotoURLs    *[]string        `json:"photo_urls" validate:"omitempty,max=6,dive,url"`
	Lat          *float64         `json:"lat" validate:"omitempty,latitude"`
	Lng          *float64         `json:"lng" validate:"omitempty,longitude"`
	Address      *string          `json:"address" validate:"omitempty,max=200"`
	District     *string          `json:"district" validate:"omitempty,max=80"`
	ContactPhone *string          `json:"contact_phone" validate:"omitempty,phone_pe"`
	Reward       *decimal.Decimal `json:"reward"`
}

// Update aplica permisos: el reportante o un admin. Un reporte cerrado solo lo edita un admin.
func (s *Service) Update(ctx context.Context, id string, actor Actor, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if !actor.canManage(p) {
		return Pet{}, ErrForbidden
	}
	if !p.Status.Open() && !actor.Admin {
		return Pet{}, ErrBadState
	}
	if err := validate.Struct(in); err != nil {
		return Pet{}, err
	}

	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.Sex != nil {
		p.Sex = *in.Sex
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PhotoURLs != nil {
		p.PhotoURLs = cleanURLs(*in.PhotoURLs)
	}
	if in.Lat != nil {
		p.Location.Lat = *in.Lat
	}
	if in.Lng != nil {
		p.Location.Lng = *in.Lng
	}
	if in.Address != nil {
		p.Location.Address = strings.TrimSpace(*in.Address)
	}
	if in.District != nil {
		p.Location.District = strings.TrimSpace(*in.District)
	}
	if in.ContactPhone != nil {
		p.ContactPhone = validate.NormalizePhone(*in.ContactPhone)
	}
	if in.Reward != nil {
		if in.Reward.IsNegative() {
			return Pet{}, &validate.ValidationError{Field: "reward", Message: "debe ser mayor o igual a 0"}
		}
		p.Reward = *in.Reward
	}

	if !(geo.Point{Lat: p.Location.Lat, Lng: p.Location.Lng}).Valid() {
		return Pet{}, &validate.ValidationError{Field: "lat", Message: "marca la ubicación en el mapa"}
	}

	prev := p.UpdatedAt
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p, prev); err != nil {
		return Pet{}, err
	}

	// Cambió la descripción: recalcular el embedding.
	if s.deps.Indexer != nil && (in.Description != nil || in.Breed != nil || in.Color != nil || in.Species != nil) {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		if err := s.deps.Indexer.Index(ictx, p); err != nil {
			s.deps.Log.Warn("embedding reindex failed", map[string]any{"pet_id": p.ID, "err": err})
		}
		cancel()
	}
	return p, nil
}

// Close marca el reporte como resuelto: reunited (perdido/encontrado/avistado) o adopted (adopción).
func (s *Service) Close(ctx context.Context, id string, actor Actor, outcome Status) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if !actor.canManage(p) {
		return Pet{}, ErrForbidden
	}
	if !p.Status.Open() {
		return Pet{}, ErrBadState
	}

	switch {
	case outcome == StatusReunited && p.Status != StatusAdoption:
	case outcome == StatusAdopted && p.Status == StatusAdoption:
	default:
		return Pet{}, ErrBadState
	}

	now := s.now()
	prev := p.UpdatedAt
	p.Status = outcome
	p.ClosedAt = &now
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p, prev); err != nil {
		return Pet{}, err
	}

	if s.deps.Points != nil && outcome == StatusReunited {
		if _, err := s.deps.Points.Award(ctx, p.ReporterUserID, gamification.ActionReunion, p.ID); err != nil {
			s.deps.Log.Warn("award points failed", map[string]any{"pet_id": p.ID, "err": err})
		}
	}
	s.publish(ctx, notify.EventPetClosed, p, map[string]any{"outcome": outcome})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canManage(p) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, p.ID)
}

// ShareLink arma el link público corto y la URL del QR para el afiche.
func (s *Service) ShareLink(ctx context.Context, id string) (ShareLink, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return ShareLink{}, err
	}
	slug, err := shortid.FromUUID(p.ID)
	if err != nil {
		return ShareLink{}, err
	}

	public := strings.TrimRight(s.deps.PublicBaseURL, "/") + "/p/" + slug
	link := ShareLink{Slug: slug, PublicURL: public}
	if s.deps.QRBaseURL != "" {
		q := url.Values{}
		q.Set("size", "300x300")
		q.Set("data", public)
		link.QRCodeURL = s.deps.QRBaseURL + "?" + q.Encode()
	}
	return link, nil
}

// Stats para el dashboard de admin.
func (s *Service) CountOpenByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountOpenByStatus(ctx)
}

func (s *Service) CountClosedSince(ctx context.Context, since time.Time) (int, error) {
	return s.repo.CountClosedSince(ctx, since)
}

func (s *Service) publish(ctx context.Context, typ string, p Pet, data map[string]any) {
	err := s.deps.Publisher.Publish(ctx, notify.Event{
		Type:      typ,
		SubjectID: p.ID,
		ActorID:   p.ReporterUserID,
		At:        s.now(),
		Data:      data,
	})
	if err != nil {
		s.deps.Log.Warn("publish event failed", map[string]any{"type": typ, "pet_id": p.ID, "err": err})
	}
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
		if len(out) == maxPhotos {
			break
		}
	}
	return out
}
