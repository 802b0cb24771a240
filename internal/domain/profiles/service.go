package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// GetOrCreate devuelve el perfil del usuario; en el primer acceso lo crea con lo que traen los claims.
func (s *Service) GetOrCreate(ctx context.Context, claims auth.Claims) (Profile, error) {
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return Profile{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	now := s.now()
	p = Profile{
		UserID:      userID,
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: defaultDisplayName(claims.Email),
		Role:        auth.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=60"`
	Phone       *string `json:"phone" validate:"omitempty,phone_pe"`
	DNI         *string `json:"dni" validate:"omitempty,dni"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	District    *string `json:"district" validate:"omitempty,max=80"`
}

func (s *Service) UpdateMe(ctx context.Context, claims auth.Claims, in UpdateInput) (Profile, error) {
	if err := validate.Struct(in); err != nil {
		return Profile{}, err
	}

	p, err := s.GetOrCreate(ctx, claims)
	if err != nil {
		return Profile{}, err
	}

	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Phone != nil {
		p.Phone = validate.NormalizePhone(*in.Phone)
	}
	if in.DNI != nil {
		p.DNI = strings.TrimSpace(*in.DNI)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.District != nil {
		p.District = strings.TrimSpace(*in.District)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Profile, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, f)
}

func (s *Service) SetRole(ctx context.Context, userID, role string) (Profile, error) {
	role = strings.TrimSpace(role)
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return Profile{}, ErrInvalidInput
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Role = role
	p.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) SetBanned(ctx context.Context, userID string, banned bool) (Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Banned = banned
	p.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// IsBanned implementa web.BanChecker. Sin perfil = no baneado.
func (s *Service) IsBanned(ctx context.Context, userID string) (bool, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Banned, nil
}

// RoleOf implementa middleware.RoleResolver.
func (s *Service) RoleOf(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// DisplayNames implementa gamification.NameResolver.
func (s *Service) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	items, err := s.repo.GetMany(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, p := range items {
		out[p.UserID] = p.DisplayName
	}
	return out, nil
}

// defaultDisplayName usa la parte local del email ("ana.p@x.pe" -> "ana.p").
func defaultDisplayName(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return "Vecino"
}

// Count total de usuarios con perfil (dashboard).
func (s *Service) Count(ctx context.Context) (int, error) {
	_, total, err := s.repo.List(ctx, ListFilter{Limit: 1})
	return total, err
}
