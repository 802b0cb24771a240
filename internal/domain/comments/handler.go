package comments

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Get("/pets/{petID}/comments", listCommentsHandler(svc))
	r.Post("/pets/{petID}/comments", createCommentHandler(svc, bans))
	r.Delete("/comments/{commentID}", deleteCommentHandler(svc))
}

type locationResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type commentResponse struct {
	ID           string            `json:"id"`
	PetID        string            `json:"pet_id"`
	AuthorUserID string            `json:"author_user_id"`
	Body         string            `json:"body"`
	IsSighting   bool              `json:"is_sighting"`
	Location     *locationResponse `json:"location,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// createCommentHandler godoc
// @Summary Comentar un reporte
// @Description is_sighting=true con lat/lng registra un avistamiento.
// @Tags comments
// @Accept json
// @Produce json
// @Param petID path string true "ID del reporte"
// @Param payload body CreateInput true "Comentario"
// @Success 201 {object} commentResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "tu cuenta está suspendida"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/comments [post]
func createCommentHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequirePoster(w, r, bans)
		if !ok {
			return
		}

		var in CreateInput
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), chi.URLParam(r, "petID"), claims.UserID, in)
		if err != nil {
			writeError(w, err, "pet not found")
			return
		}
		web.WriteJSON(w, http.StatusCreated, toCommentResponse(c))
	}
}

// listCommentsHandler godoc
// @Summary Hilo de comentarios
// @Tags comments
// @Produce json
// @Param petID path string true "ID del reporte"
// @Param page query int false "Página"
// @Param page_size query int false "Tamaño de página"
// @Success 200 {object} web.PageResponse[commentResponse]
// @Router /pets/{petID}/comments [get]
func listCommentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := web.ParsePage(r)
		items, total, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err, "pet not found")
			return
		}

		out := make([]commentResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCommentResponse(c))
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(out, page, total))
	}
}

// deleteCommentHandler godoc
// @Summary Eliminar comentario
// @Description El autor, el reportante de la mascota o un admin.
// @Tags comments
// @Param commentID path string true "ID del comentario"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "comment not found"
// @Router /comments/{commentID} [delete]
func deleteCommentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "commentID"), claims.UserID, claims.IsAdmin()); err != nil {
			writeError(w, err, "comment not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error, notFound string) {
	if msg, ok := web.ValidationMessage(err); ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, notFound, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCommentResponse(c Comment) commentResponse {
	out := commentResponse{
		ID:           c.ID,
		PetID:        c.PetID,
		AuthorUserID: c.AuthorUserID,
		Body:         c.Body,
		IsSighting:   c.IsSighting,
		CreatedAt:    c.CreatedAt,
	}
	if c.Location != nil {
		out.Location = &locationResponse{Lat: c.Location.Lat, Lng: c.Location.Lng, Address: c.Location.Address}
	}
	return out
}
