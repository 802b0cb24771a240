package media

import (
	"context"
	"time"
)

// PresignedUpload es lo que recibe el frontend para subir la foto directo al bucket.
type PresignedUpload struct {
	UploadURL string
	Method    string
	Headers   map[string]string
	PublicURL string
	Key       string
	ExpiresAt time.Time
}

type Uploader interface {
	PresignPut(ctx context.Context, key, contentType string) (PresignedUpload, error)
}
