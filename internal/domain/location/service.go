// Package location expone la geocodificación (buscar direcciones y ubicar un punto del mapa).
package location

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/ports/geocoding"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDisabled     = errors.New("geocoding disabled")
)

const (
	defaultLimit = 5
	maxLimit     = 10
)

type Service struct {
	geocoder geocoding.Geocoder
}

func NewService(g geocoding.Geocoder) *Service {
	return &Service{geocoder: g}
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]geocoding.Place, error) {
	if s.geocoder == nil {
		return nil, ErrDisabled
	}
	query = strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(query) < 3 || utf8.RuneCountInString(query) > 200 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	places, err := s.geocoder.Search(ctx, query, limit)
	if errors.Is(err, geocoding.ErrNoResults) {
		return []geocoding.Place{}, nil
	}
	return places, err
}

func (s *Service) Reverse(ctx context.Context, lat, lng float64) (geocoding.Place, error) {
	if s.geocoder == nil {
		return geocoding.Place{}, ErrDisabled
	}
	if !(geo.Point{Lat: lat, Lng: lng}).Valid() {
		return geocoding.Place{}, ErrInvalidInput
	}
	return s.geocoder.Reverse(ctx, lat, lng)
}
