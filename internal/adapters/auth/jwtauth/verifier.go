package jwtauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrInvalidToken  = errors.New("invalid token")
)

// Config: Secret para tokens HS256, JWKSURL para tokens firmados con clave asimétrica.
// Se puede usar uno, el otro o ambos.
type Config struct {
	Secret    string
	JWKSURL   string
	Audience  string
	AdminRole string
	Log       logger.Logger
}

// Verifier valida el JWT localmente, sin ir al servicio de auth.
type Verifier struct {
	secret    []byte
	jwks      *keyfunc.JWKS
	audience  string
	adminRole string
}

type tokenClaims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// New arma el verifier. Con JWKSURL baja las claves y las refresca en background;
// hay que llamar a Close al apagar.
func New(cfg Config) (*Verifier, error) {
	v := newVerifier(cfg)
	if url := strings.TrimSpace(cfg.JWKSURL); url != "" {
		log := cfg.Log
		if log == nil {
			log = logger.Nop()
		}
		jwks, err := keyfunc.Get(url, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Warn("jwks refresh failed", map[string]any{"err": err})
			},
		})
		if err != nil {
			return nil, fmt.Errorf("jwtauth: load jwks: %w", err)
		}
		v.jwks = jwks
	}
	if v.secret == nil && v.jwks == nil {
		return nil, ErrNotConfigured
	}
	return v, nil
}

// NewFromJWKSJSON usa un JWKS fijo (sin refresco).
func NewFromJWKSJSON(raw json.RawMessage, cfg Config) (*Verifier, error) {
	jwks, err := keyfunc.NewJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("jwtauth: parse jwks: %w", err)
	}
	v := newVerifier(cfg)
	v.jwks = jwks
	return v, nil
}

func newVerifier(cfg Config) *Verifier {
	v := &Verifier{
		audience:  strings.TrimSpace(cfg.Audience),
		adminRole: strings.TrimSpace(cfg.AdminRole),
	}
	if v.adminRole == "" {
		v.adminRole = auth.RoleAdmin
	}
	if s := strings.TrimSpace(cfg.Secret); s != "" {
		v.secret = []byte(s)
	}
	return v
}

func (v *Verifier) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, v.keyFunc, jwt.WithValidMethods(v.methods()))
	if err != nil || !parsed.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.audience != "" && !tc.VerifyAudience(v.audience, true) {
		return auth.Claims{}, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}

	sub := strings.TrimSpace(tc.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	role := auth.RoleUser
	if strings.EqualFold(tc.Role, v.adminRole) || strings.EqualFold(tc.AppMetadata.Role, v.adminRole) {
		role = auth.RoleAdmin
	}
	return auth.Claims{
		UserID: sub,
		Email:  strings.ToLower(strings.TrimSpace(tc.Email)),
		Role:   role,
	}, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, errors.New("hmac token without secret")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, errors.New("asymmetric token without jwks")
	}
	return v.jwks.Keyfunc(t)
}

func (v *Verifier) methods() []string {
	var out []string
	if v.secret != nil {
		out = append(out, "HS256")
	}
	if v.jwks != nil {
		out = append(out, "RS256", "ES256")
	}
	return out
}
