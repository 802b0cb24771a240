package businesses

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
)

type PointsAwarder interface {
	Award(ctx context.Context, userID string, action gamification.Action, refID string) (int, error)
}

type Service struct {
	repo    Repository
	ratings RatingRepository
	points  PointsAwarder
	audit   audit.Recorder
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, ratings RatingRepository, points PointsAwarder, rec audit.Recorder, log logger.Logger) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		ratings: ratings,
		points:  points,
		audit:   rec,
		log:     log,
		now:     time.Now,
	}
}

type Input struct {
	Name        string    `json:"name" validate:"required,min=2,max=120"`
	Type        Type      `json:"type" validate:"required,oneof=veterinary petshop grooming shelter other"`
	Description string    `json:"description" validate:"max=2000"`
	Phone       string    `json:"phone" validate:"omitempty,phone_pe"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Website     string    `json:"website" validate:"omitempty,url"`
	Address     string    `json:"address" validate:"required,max=200"`
	District    string    `json:"district" validate:"required,max=80"`
	Lat         float64   `json:"lat" validate:"latitude"`
	Lng         float64   `json:"lng" validate:"longitude"`
	Hours       string    `json:"hours" validate:"max=200"`
	Products    []Product `json:"products" validate:"max=50,dive"`
}

func (in Input) check() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !(geo.Point{Lat: in.Lat, Lng: in.Lng}).Valid() {
		return &validate.ValidationError{Field: "lat", Message: "marca la ubicación en el mapa"}
	}
	for _, p := range in.Products {
		if p.Price.IsNegative() {
			return &validate.ValidationError{Field: "price", Message: "debe ser mayor o igual a 0"}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in Input) (Business, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Business{}, ErrInvalidInput
	}
	if err := in.check(); err != nil {
		return Business{}, err
	}

	now := s.now()
	b := Business{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		CreatedAt:   now,
	}
	apply(&b, in)
	b.UpdatedAt = now

	if err := s.repo.Create(ctx, b); err != nil {
		return Business{}, err
	}
	return b, nil
}

// Update reemplaza los datos editables. Cambiar datos de un negocio verificado
// no quita la verificación; la dirección sí (requiere revisión).
func (s *Service) Update(ctx context.Context, id, actorUserID string, admin bool, in Input) (Business, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Business{}, err
	}
	if !admin && b.OwnerUserID != actorUserID {
		return Business{}, ErrForbidden
	}
	if err := in.check(); err != nil {
		return Business{}, err
	}

	moved := strings.TrimSpace(in.Address) != b.Address
	apply(&b, in)
	if moved && !admin {
		b.Verified = false
	}
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return Business{}, err
	}
	return b, nil
}

func apply(b *Business, in Input) {
	b.Name = strings.TrimSpace(in.Name)
	b.Type = in.Type
	b.Description = strings.TrimSpace(in.Description)
	b.Phone = validate.NormalizePhone(in.Phone)
	b.Email = strings.ToLower(strings.TrimSpace(in.Email))
	b.Website = strings.TrimSpace(in.Website)
	b.Address = strings.TrimSpace(in.Address)
	b.District = strings.TrimSpace(in.District)
	b.Lat = in.Lat
	b.Lng = in.Lng
	b.Hours = strings.TrimSpace(in.Hours)

	products := make([]Product, 0, len(in.Products))
	for _, p := range in.Products {
		p.Name = strings.TrimSpace(p.Name)
		p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
		if p.Currency == "" {
			p.Currency = DefaultCurrency
		}
		p.Price = p.Price.Round(2)
		products = append(products, p)
	}
	b.Products = products
}

func (s *Service) Delete(ctx context.Context, id, actorUserID string, admin bool) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !admin && b.OwnerUserID != actorUserID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return err
	}
	if admin && b.OwnerUserID != actorUserID {
		s.audit.Record(ctx, actorUserID, "business.delete", "business", b.ID, map[string]any{"name": b.Name})
	}
	return nil
}

// Remove borra sin chequear permisos (moderación).
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

func (s *Service) Get(ctx context.Context, id string) (Business, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Business{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Business, int, error) {
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

// Verify marca (o desmarca) un negocio como verificado. Solo admin.
func (s *Service) Verify(ctx context.Context, id, adminUserID string, verified bool) (Business, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Business{}, err
	}
	b.Verified = verified
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Business{}, err
	}
	s.audit.Record(ctx, adminUserID, "business.verify", "business", b.ID, map[string]any{"verified": verified})
	return b, nil
}

func (s *Service) CountUnverified(ctx context.Context) (int, error) {
	return s.repo.CountUnverified(ctx)
}

type RateInput struct {
	Stars   int    `json:"stars" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Rate crea o reemplaza la calificación del usuario y recalcula el promedio del negocio.
func (s *Service) Rate(ctx context.Context, businessID, userID string, in RateInput) (Rating, Business, error) {
	if strings.TrimSpace(userID) == "" {
		return Rating{}, Business{}, ErrInvalidInput
	}
	if err := validate.Struct(in); err != nil {
		return Rating{}, Business{}, err
	}
	b, err := s.Get(ctx, businessID)
	if err != nil {
		return Rating{}, Business{}, err
	}
	if b.OwnerUserID == userID {
		return Rating{}, Business{}, ErrForbidden
	}

	now := s.now()
	r := Rating{
		ID:         uuid.NewString(),
		BusinessID: b.ID,
		UserID:     userID,
		Stars:      in.Stars,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	stored, created, err := s.ratings.Upsert(ctx, r)
	if err != nil {
		return Rating{}, Business{}, err
	}

	// Solo se tocan las columnas del agregado; una edición concurrente del dueño no se pisa.
	avg, count, err := s.repo.RefreshRating(ctx, b.ID)
	if err != nil {
		return Rating{}, Business{}, err
	}
	b.RatingAvg = avg
	b.RatingCount = count

	if created && s.points != nil {
		if _, err := s.points.Award(ctx, userID, gamification.ActionBusinessRated, b.ID); err != nil {
			s.log.Warn("award points failed", map[string]any{"business_id": b.ID, "err": err})
		}
	}
	return stored, b, nil
}

func (s *Service) ListRatings(ctx context.Context, businessID string, limit, offset int) ([]Rating, int, error) {
	b, err := s.Get(ctx, businessID)
	if err != nil {
		return nil, 0, err
	}
	return s.ratings.ListByBusiness(ctx, b.ID, limit, offset)
}
