package uploads

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
	"pet-reunite/internal/ports/media"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Post("/uploads/presign", presignHandler(svc, bans))
}

type presignRequest struct {
	ContentType string `json:"content_type"`
	Kind        Kind   `json:"kind"`
}

type presignResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	PublicURL string            `json:"public_url"`
	Key       string            `json:"key"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// presignHandler godoc
// @Summary URL prefirmada para subir una foto
// @Description content_type: image/jpeg, image/png o image/webp. kind: pets|avatars|businesses|campaigns.
// @Tags uploads
// @Accept json
// @Produce json
// @Param payload body presignRequest true "Archivo"
// @Success 200 {object} presignResponse
// @Failure 400 {string} string "unsupported content type"
// @Failure 503 {string} string "uploads disabled"
// @Router /uploads/presign [post]
func presignHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequirePoster(w, r, bans)
		if !ok {
			return
		}
		var req presignRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		up, err := svc.PresignUpload(r.Context(), claims.UserID, req.ContentType, req.Kind)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "unsupported content type", http.StatusBadRequest)
			case errors.Is(err, ErrDisabled):
				http.Error(w, "uploads disabled", http.StatusServiceUnavailable)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		web.WriteJSON(w, http.StatusOK, toPresignResponse(up))
	}
}

func toPresignResponse(u media.PresignedUpload) presignResponse {
	headers := u.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return presignResponse{
		UploadURL: u.UploadURL,
		Method:    u.Method,
		Headers:   headers,
		PublicURL: u.PublicURL,
		Key:       u.Key,
		ExpiresAt: u.ExpiresAt,
	}
}
