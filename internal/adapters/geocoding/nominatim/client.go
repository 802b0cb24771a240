// Package nominatim implementa geocoding.Geocoder contra la API de OpenStreetMap Nominatim.
package nominatim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pet-reunite/internal/platform/httpclient"
	"pet-reunite/internal/ports/geocoding"
)

var ErrUpstream = errors.New("nominatim upstream error")

type Config struct {
	BaseURL string
	// Nominatim exige un User-Agent que identifique a la app.
	UserAgent string
	// Opcional, p.ej. "pe". Limita búsquedas a esos países.
	CountryCodes string
	Language     string
	Timeout      time.Duration
}

type Client struct {
	http         *httpclient.Client
	countryCodes string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, errors.New("nominatim: user agent is required")
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = "es"
	}
	hc.WithHeader("User-Agent", cfg.UserAgent).WithHeader("Accept-Language", lang)
	return &Client{http: hc, countryCodes: strings.TrimSpace(cfg.CountryCodes)}, nil
}

type address struct {
	Suburb        string `json:"suburb"`
	CityDistrict  string `json:"city_district"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Country       string `json:"country"`
}

type result struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocoding.Place, error) {
	q := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {strconv.Itoa(limit)},
	}
	if c.countryCodes != "" {
		q.Set("countrycodes", c.countryCodes)
	}

	var out []result
	if err := c.http.GetJSON(ctx, "/search", q, nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(out) == 0 {
		return nil, geocoding.ErrNoResults
	}

	places := make([]geocoding.Place, 0, len(out))
	for _, r := range out {
		p, ok := r.toPlace()
		if !ok {
			continue
		}
		places = append(places, p)
	}
	if len(places) == 0 {
		return nil, geocoding.ErrNoResults
	}
	return places, nil
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (geocoding.Place, error) {
	q := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":            {strconv.FormatFloat(lng, 'f', 6, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"zoom":           {"16"},
	}

	var out result
	if err := c.http.GetJSON(ctx, "/reverse", q, nil, &out); err != nil {
		return geocoding.Place{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// Sin resultado Nominatim responde 200 con {"error": "Unable to geocode"}.
	if out.Error != "" {
		return geocoding.Place{}, geocoding.ErrNoResults
	}
	p, ok := out.toPlace()
	if !ok {
		return geocoding.Place{}, geocoding.ErrNoResults
	}
	return p, nil
}

func (r result) toPlace() (geocoding.Place, bool) {
	lat, err1 := strconv.ParseFloat(r.Lat, 64)
	lng, err2 := strconv.ParseFloat(r.Lon, 64)
	if err1 != nil || err2 != nil {
		return geocoding.Place{}, false
	}
	return geocoding.Place{
		DisplayName: r.DisplayName,
		Lat:         lat,
		Lng:         lng,
		District:    firstNonEmpty(r.Address.Suburb, r.Address.CityDistrict, r.Address.Neighbourhood),
		City:        firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village),
		Country:     r.Address.Country,
	}, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
