package profiles

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
	"pet-reunite/internal/ports/audit"
)

func RegisterRoutes(r chi.Router, svc *Service, rec audit.Recorder) {
	if rec == nil {
		rec = audit.Nop{}
	}

	r.Get("/me/profile", getMeHandler(svc))
	r.Patch("/me/profile", updateMeHandler(svc))

	// Perfil público (sin datos de contacto)
	r.Get("/users/{userID}", getPublicHandler(svc))

	r.Route("/admin/users", func(ar chi.Router) {
		ar.Get("/", adminListHandler(svc))
		ar.Patch("/{userID}/role", adminSetRoleHandler(svc, rec))
		ar.Patch("/{userID}/ban", adminSetBannedHandler(svc, rec))
	})
}

type profileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DNI         string    `json:"dni"`
	AvatarURL   string    `json:"avatar_url"`
	District    string    `json:"district"`
	Role        string    `json:"role"`
	Banned      bool      `json:"banned"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type publicProfileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	District    string    `json:"district"`
	CreatedAt   time.Time `json:"created_at"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

type setBannedRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

// getMeHandler godoc
// @Summary Mi perfil
// @Description Devuelve el perfil del usuario autenticado; lo crea en el primer acceso.
// @Tags profiles
// @Produce json
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/profile [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		p, err := svc.GetOrCreate(r.Context(), claims)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		web.WriteJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// updateMeHandler godoc
// @Summary Actualizar mi perfil
// @Description PATCH parcial. Valida celular (9 dígitos, empieza con 9) y DNI (8 dígitos).
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} profileResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Router /me/profile [patch]
func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}

		var in UpdateInput
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateMe(r.Context(), claims, in)
		if err != nil {
			if msg, ok := web.ValidationMessage(err); ok {
				http.Error(w, msg, http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		web.WriteJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// getPublicHandler godoc
// @Summary Perfil público de un usuario
// @Tags profiles
// @Produce json
// @Param userID path string true "ID de usuario"
// @Success 200 {object} publicProfileResponse
// @Failure 404 {string} string "user not found"
// @Router /users/{userID} [get]
func getPublicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		web.WriteJSON(w, http.StatusOK, toPublicProfileResponse(p))
	}
}

func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}

		page := web.ParsePage(r)
		f := ListFilter{
			Query:  r.URL.Query().Get("q"),
			Role:   strings.TrimSpace(r.URL.Query().Get("role")),
			Limit:  page.Limit(),
			Offset: page.Offset(),
		}
		if v := r.URL.Query().Get("banned"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				f.Banned = &b
			}
		}

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]profileResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProfileResponse(p))
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(out, page, total))
	}
}

func adminSetRoleHandler(svc *Service, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}

		var req setRoleRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		userID := chi.URLParam(r, "userID")
		p, err := svc.SetRole(r.Context(), userID, req.Role)
		if err != nil {
			writeError(w, err)
			return
		}

		rec.Record(r.Context(), admin.UserID, "user.set_role", "user", userID, map[string]any{"role": p.Role})
		web.WriteJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func adminSetBannedHandler(svc *Service, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}

		var req setBannedRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		userID := chi.URLParam(r, "userID")
		if userID == admin.UserID {
			http.Error(w, "no puedes suspender tu propia cuenta", http.StatusBadRequest)
			return
		}

		p, err := svc.SetBanned(r.Context(), userID, req.Banned)
		if err != nil {
			writeError(w, err)
			return
		}

		rec.Record(r.Context(), admin.UserID, "user.set_banned", "user", userID, map[string]any{
			"banned": p.Banned,
			"reason": strings.TrimSpace(req.Reason),
		})
		web.WriteJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Phone:       p.Phone,
		DNI:         p.DNI,
		AvatarURL:   p.AvatarURL,
		District:    p.District,
		Role:        p.Role,
		Banned:      p.Banned,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPublicProfileResponse(p Profile) publicProfileResponse {
	return publicProfileResponse{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		District:    p.District,
		CreatedAt:   p.CreatedAt,
	}
}
