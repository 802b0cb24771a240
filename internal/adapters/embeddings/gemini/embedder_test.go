package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-embedding-001")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"embeddings":[{"values":[0.1,0.2,0.3]}]}`)
	}))
	defer srv.Close()

	e, err := New(context.Background(), Config{APIKey: "test-key", Dimensions: 3, BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini:gemini-embedding-001", e.Name())

	vec, err := e.Embed(context.Background(), "Perro mestizo marrón, collar rojo")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.True(t, strings.Contains(body, "SEMANTIC_SIMILARITY"), body)
	assert.Contains(t, body, "collar rojo")
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"embeddings":[]}`)
	}))
	defer srv.Close()

	e, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "gato")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)

	_, err = e.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
