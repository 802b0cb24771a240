package gotrue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/ports/auth"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") != "anon-key" {
			http.Error(w, "no api key", http.StatusUnauthorized)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"id":"u-1","email":"Ana@Mail.com","role":"authenticated","app_metadata":{"role":"admin"}}`))
		case "Bearer plain":
			_, _ = w.Write([]byte(`{"id":"u-2","email":"beto@mail.com","role":"authenticated"}`))
		case "Bearer broken":
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			http.Error(w, "invalid token", http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifier_Verify(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "anon-key"})
	require.NoError(t, err)
	v := NewVerifier(c, "admin")
	ctx := context.Background()

	claims, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "u-1", Email: "ana@mail.com", Role: auth.RoleAdmin}, claims)

	claims, err = v.Verify(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claims.Role)

	_, err = v.Verify(ctx, "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(ctx, "broken")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(ctx, "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.False(t, c.IsConfigured())

	_, err = NewVerifier(c, "").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
