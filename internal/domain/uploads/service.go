// Package uploads entrega URLs prefirmadas para que el navegador suba fotos directo al bucket.
package uploads

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"pet-reunite/internal/ports/media"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDisabled     = errors.New("uploads disabled")
)

// Kind es la carpeta lógica del archivo.
type Kind string

const (
	KindPet      Kind = "pets"
	KindAvatar   Kind = "avatars"
	KindBusiness Kind = "businesses"
	KindCampaign Kind = "campaigns"
)

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

func validKind(k Kind) bool {
	switch k {
	case KindPet, KindAvatar, KindBusiness, KindCampaign:
		return true
	}
	return false
}

type Service struct {
	uploader media.Uploader
}

func NewService(u media.Uploader) *Service {
	return &Service{uploader: u}
}

// PresignUpload arma la key <kind>/<user>/<uuid>.<ext> y la prefirma.
func (s *Service) PresignUpload(ctx context.Context, userID, contentType string, kind Kind) (media.PresignedUpload, error) {
	if s.uploader == nil {
		return media.PresignedUpload{}, ErrDisabled
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.ContainsAny(userID, "/\\") {
		return media.PresignedUpload{}, ErrInvalidInput
	}
	if kind == "" {
		kind = KindPet
	}
	if !validKind(kind) {
		return media.PresignedUpload{}, ErrInvalidInput
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := extByContentType[ct]
	if !ok {
		return media.PresignedUpload{}, ErrInvalidInput
	}

	key := path.Join(string(kind), userID, uuid.NewString()+"."+ext)
	return s.uploader.PresignPut(ctx, key, ct)
}
