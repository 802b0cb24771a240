// Package cache guarda respuestas de servicios externos (hoy: geocoder).
// Redis si hay REDIS_URL; si no, un mapa en memoria con TTL.
package cache

import (
	"context"
	"time"
)

// Cache guarda bytes por clave. found=false sin error es un miss.
type Cache interface {
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}
