package jwtauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/ports/auth"
)

const secret = "super-secret-for-tests"

func signHS(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier_HS256(t *testing.T) {
	v, err := New(Config{Secret: secret, AdminRole: "admin"})
	require.NoError(t, err)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Unix()

	claims, err := v.Verify(ctx, signHS(t, jwt.MapClaims{
		"sub":          "u-1",
		"email":        "Ana@Mail.com",
		"role":         "authenticated",
		"app_metadata": map[string]any{"role": "admin"},
		"exp":          exp,
	}))
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "u-1", Email: "ana@mail.com", Role: auth.RoleAdmin}, claims)

	claims, err = v.Verify(ctx, signHS(t, jwt.MapClaims{"sub": "u-2", "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claims.Role)
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := New(Config{Secret: secret, Audience: "authenticated"})
	require.NoError(t, err)
	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"expired":   signHS(t, jwt.MapClaims{"sub": "u", "aud": "authenticated", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no sub":    signHS(t, jwt.MapClaims{"aud": "authenticated", "exp": future}),
		"wrong aud": signHS(t, jwt.MapClaims{"sub": "u", "aud": "anon", "exp": future}),
		"garbage":   "a.b.c",
		"other key": mustSign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": future}, []byte("other")),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestNew_RequiresKeyMaterial(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifier_JWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	b64 := base64.RawURLEncoding.EncodeToString
	raw, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"alg": "RS256",
			"use": "sig",
			"n":   b64(key.N.Bytes()),
			"e":   b64(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	v, err := NewFromJWKSJSON(raw, Config{})
	require.NoError(t, err)
	defer v.Close()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u-9",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)

	// Sin secret configurado, un HS256 se rechaza.
	_, err = v.Verify(context.Background(), signHS(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func mustSign(t *testing.T, m jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(m, claims).SignedString(key)
	require.NoError(t, err)
	return s
}
