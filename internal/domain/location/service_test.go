package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/ports/geocoding"
)

type stubGeocoder struct {
	lastQuery string
	lastLimit int
}

func (g *stubGeocoder) Search(ctx context.Context, q string, limit int) ([]geocoding.Place, error) {
	g.lastQuery, g.lastLimit = q, limit
	if q == "nada" {
		return nil, geocoding.ErrNoResults
	}
	return []geocoding.Place{{DisplayName: "Parque Kennedy, Miraflores", Lat: -12.1211, Lng: -77.0297}}, nil
}

func (g *stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (geocoding.Place, error) {
	return geocoding.Place{DisplayName: "Miraflores", Lat: lat, Lng: lng, District: "Miraflores"}, nil
}

func TestService_Search(t *testing.T) {
	g := &stubGeocoder{}
	svc := NewService(g)
	ctx := context.Background()

	places, err := svc.Search(ctx, "  parque   kennedy ", 50)
	require.NoError(t, err)
	assert.Len(t, places, 1)
	assert.Equal(t, "parque kennedy", g.lastQuery)
	assert.Equal(t, maxLimit, g.lastLimit)

	places, err = svc.Search(ctx, "nada", 0)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Equal(t, defaultLimit, g.lastLimit)

	_, err = svc.Search(ctx, "ab", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Reverse(t *testing.T) {
	svc := NewService(&stubGeocoder{})

	p, err := svc.Reverse(context.Background(), -12.12, -77.03)
	require.NoError(t, err)
	assert.Equal(t, "Miraflores", p.District)

	_, err = svc.Reverse(context.Background(), 91, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Disabled(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Search(context.Background(), "lima", 0)
	assert.ErrorIs(t, err, ErrDisabled)
}
