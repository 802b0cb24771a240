// Package web junta los helpers HTTP que antes estaban duplicados en cada handler
// (writeJSON, auth requerida, paginación, decode estricto).
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"pet-reunite/internal/middleware"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/auth"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RequireUser devuelve los claims o responde 401.
func RequireUser(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

// RequireAdmin devuelve los claims si el usuario es admin, o responde 401/403.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := RequireUser(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if !claims.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Page es la paginación 1-based que llega por query (?page=&page_size=).
type Page struct {
	Page     int
	PageSize int
}

func (p Page) Limit() int  { return p.PageSize }
func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

func ParsePage(r *http.Request) Page {
	p := Page{Page: 1, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		if v > MaxPageSize {
			v = MaxPageSize
		}
		p.PageSize = v
	}
	return p
}

// PageResponse envuelve listados paginados.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

func NewPageResponse[T any](items []T, p Page, total int) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: total}
}

// ValidationMessage devuelve el texto para el usuario si err es de validación.
func ValidationMessage(err error) (string, bool) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return ve.Error(), true
	}
	return "", false
}

// QueryFloat lee un float opcional del query string.
func QueryFloat(r *http.Request, key string) (float64, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// BanChecker lo implementa profiles; los usuarios baneados no pueden publicar.
type BanChecker interface {
	IsBanned(ctx context.Context, userID string) (bool, error)
}

// RequirePoster es RequireUser + chequeo de baneo (403).
// Si bans es nil no se chequea (tests de módulos aislados).
func RequirePoster(w http.ResponseWriter, r *http.Request, bans BanChecker) (auth.Claims, bool) {
	claims, ok := RequireUser(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if bans == nil {
		return claims, true
	}
	banned, err := bans.IsBanned(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return auth.Claims{}, false
	}
	if banned {
		http.Error(w, "tu cuenta está suspendida", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}
