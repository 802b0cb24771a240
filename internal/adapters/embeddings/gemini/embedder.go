// Package gemini genera embeddings de texto con la API de Gemini (google.golang.org/genai).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-embedding-001"
	DefaultDimensions = 768

	taskSemanticSimilarity = "SEMANTIC_SIMILARITY"
)

var ErrEmptyEmbedding = errors.New("no embeddings returned")

type Config struct {
	APIKey     string
	Model      string
	Dimensions int32
	// Solo tests: apunta el SDK a un server falso.
	BaseURL string
}

// Embedder implementa embeddings.Embedder. Todos los vectores salen con la misma
// dimensión para que entren en la columna vector(N).
type Embedder struct {
	client *genai.Client
	model  string
	dims   int32
}

func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Embedder{client: client, model: model, dims: dims}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("gemini: empty text")
	}

	dims := e.dims
	res, err := e.client.Models.EmbedContent(ctx,
		e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			TaskType:             taskSemanticSimilarity,
			OutputDimensionality: &dims,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return res.Embeddings[0].Values, nil
}

func (e *Embedder) Name() string {
	return "gemini:" + e.model
}
