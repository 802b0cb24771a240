package nominatim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"pet-reunite/internal/adapters/cache"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/geocoding"
)

const DefaultCacheTTL = 24 * time.Hour

// Cached decora un Geocoder con un cache. Un error del cache se loguea y se sigue
// contra el upstream. Los "sin resultados" también se cachean.
type Cached struct {
	next  geocoding.Geocoder
	cache cache.Cache
	ttl   time.Duration
	log   logger.Logger
}

func NewCached(next geocoding.Geocoder, c cache.Cache, ttl time.Duration, log logger.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, log: log}
}

func (c *Cached) Search(ctx context.Context, query string, limit int) ([]geocoding.Place, error) {
	key := fmt.Sprintf("geo:s:%d:%s", limit, strings.ToLower(query))
	var places []geocoding.Place
	if c.lookup(ctx, key, &places) {
		if len(places) == 0 {
			return nil, geocoding.ErrNoResults
		}
		return places, nil
	}

	places, err := c.next.Search(ctx, query, limit)
	switch {
	case err == nil:
		c.store(ctx, key, places)
	case errors.Is(err, geocoding.ErrNoResults):
		c.store(ctx, key, []geocoding.Place{})
	}
	return places, err
}

func (c *Cached) Reverse(ctx context.Context, lat, lng float64) (geocoding.Place, error) {
	// ~11 m de precisión: puntos vecinos comparten entrada.
	key := fmt.Sprintf("geo:r:%.4f:%.4f", lat, lng)
	var p geocoding.Place
	if c.lookup(ctx, key, &p) {
		return p, nil
	}

	p, err := c.next.Reverse(ctx, lat, lng)
	if err == nil {
		c.store(ctx, key, p)
	}
	return p, err
}

func (c *Cached) lookup(ctx context.Context, key string, out any) bool {
	b, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("geocoder cache get failed", map[string]any{"key": key, "err": err})
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.log.Warn("geocoder cache set failed", map[string]any{"key": key, "err": err})
	}
}
