package comments

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/notify"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

const maxBody = 1000

type PetReader interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type PointsAwarder interface {
	Award(ctx context.Context, userID string, action gamification.Action, refID string) (int, error)
}

type Service struct {
	repo      Repository
	pets      PetReader
	points    PointsAwarder
	publisher notify.Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, petReader PetReader, points PointsAwarder, publisher notify.Publisher, log logger.Logger) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		pets:      petReader,
		points:    points,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

type CreateInput struct {
	Body       string   `json:"body"`
	IsSighting bool     `json:"is_sighting"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Address    string   `json:"address"`
}

func (s *Service) Create(ctx context.Context, petID, authorUserID string, in CreateInput) (Comment, error) {
	if strings.TrimSpace(authorUserID) == "" {
		return Comment{}, ErrInvalidInput
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return Comment{}, &validate.ValidationError{Field: "body", Message: "es obligatorio"}
	}
	if utf8.RuneCountInString(body) > maxBody {
		return Comment{}, &validate.ValidationError{Field: "body", Message: "no puede superar 1000 caracteres"}
	}

	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}

	c := Comment{
		ID:           uuid.NewString(),
		PetID:        pet.ID,
		AuthorUserID: authorUserID,
		Body:         body,
		IsSighting:   in.IsSighting,
		CreatedAt:    s.now(),
	}

	// La ubicación solo aplica a avistamientos, y va completa o no va.
	if in.IsSighting && (in.Lat != nil || in.Lng != nil) {
		if in.Lat == nil || in.Lng == nil {
			return Comment{}, &validate.ValidationError{Field: "lat", Message: "marca la ubicación en el mapa"}
		}
		if !(geo.Point{Lat: *in.Lat, Lng: *in.Lng}).Valid() {
			return Comment{}, &validate.ValidationError{Field: "lat", Message: "marca la ubicación en el mapa"}
		}
		c.Location = &Location{Lat: *in.Lat, Lng: *in.Lng, Address: strings.TrimSpace(in.Address)}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Comment{}, err
	}

	action := gamification.ActionComment
	if c.IsSighting {
		action = gamification.ActionSighting
	}
	// Comentar el propio reporte no suma.
	if s.points != nil && authorUserID != pet.ReporterUserID {
		if _, err := s.points.Award(ctx, authorUserID, action, c.ID); err != nil {
			s.log.Warn("award points failed", map[string]any{"comment_id": c.ID, "err": err})
		}
	}

	err = s.publisher.Publish(ctx, notify.Event{
		Type:      notify.EventCommentAdded,
		SubjectID: pet.ID,
		ActorID:   authorUserID,
		At:        c.CreatedAt,
		Data: map[string]any{
			"comment_id":  c.ID,
			"is_sighting": c.IsSighting,
			"reporter_id": pet.ReporterUserID,
		},
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"type": notify.EventCommentAdded, "err": err})
	}
	return c, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, limit, offset int) ([]Comment, int, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, 0, ErrNotFound
	}
	return s.repo.ListByPet(ctx, petID, limit, offset)
}

func (s *Service) GetByID(ctx context.Context, id string) (Comment, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// Delete: el autor, el reportante de la mascota o un admin.
func (s *Service) Delete(ctx context.Context, id, actorUserID string, admin bool) error {
	c, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !admin && c.AuthorUserID != actorUserID {
		pet, err := s.pets.GetByID(ctx, c.PetID)
		if err != nil || pet.ReporterUserID != actorUserID {
			return ErrForbidden
		}
	}
	return s.repo.Delete(ctx, c.ID)
}

// Remove borra sin chequear permisos (moderación).
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}
