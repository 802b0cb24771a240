package embeddings

import "context"

// Embedder genera un vector para un texto (API de IA generativa).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}
