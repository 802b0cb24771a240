package gotrue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-reunite/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier preguntando al servicio de auth por cada token.
// adminRole es el valor de app_metadata.role que se traduce a auth.RoleAdmin.
type Verifier struct {
	client    *Client
	adminRole string
}

func NewVerifier(client *Client, adminRole string) *Verifier {
	adminRole = strings.TrimSpace(adminRole)
	if adminRole == "" {
		adminRole = auth.RoleAdmin
	}
	return &Verifier{client: client, adminRole: adminRole}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	u, err := v.client.GetUser(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("gotrue verify failed: %w", err)
	}

	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return auth.Claims{}, errors.New("gotrue user missing id")
	}

	role := auth.RoleUser
	if strings.EqualFold(strings.TrimSpace(u.AppMetadata.Role), v.adminRole) {
		role = auth.RoleAdmin
	}
	return auth.Claims{
		UserID: u.ID,
		Email:  strings.ToLower(strings.TrimSpace(u.Email)),
		Role:   role,
	}, nil
}
