package geocoding

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("no geocoding results")

// Place es un resultado de geocodificación (directa o inversa).
type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	District    string  `json:"district,omitempty"`
	City        string  `json:"city,omitempty"`
	Country     string  `json:"country,omitempty"`
}

type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
	Reverse(ctx context.Context, lat, lng float64) (Place, error)
}
