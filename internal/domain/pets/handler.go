package pets

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	// Rutas planas (sin Mount) para que comments cuelgue de /pets/{petID}/comments.
	r.Post("/pets", createPetHandler(svc, bans))
	r.Get("/pets", listPetsHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
	r.Patch("/pets/{petID}", updatePetHandler(svc))
	r.Delete("/pets/{petID}", deletePetHandler(svc))
	r.Post("/pets/{petID}/close", closePetHandler(svc))
	r.Get("/pets/{petID}/share", shareLinkHandler(svc))

	// Link corto del afiche / QR
	r.Get("/p/{slug}", getBySlugHandler(svc))

	r.Get("/me/pets", listMyPetsHandler(svc))
}

type locationResponse struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address"`
	District string  `json:"district"`
}

type petResponse struct {
	ID             string           `json:"id"`
	ReporterUserID string           `json:"reporter_user_id"`
	Status         Status           `json:"status"`
	Species        Species          `json:"species"`
	Breed          string           `json:"breed"`
	Color          string           `json:"color"`
	Size           Size             `json:"size"`
	Sex            Sex              `json:"sex"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	PhotoURLs      []string         `json:"photo_urls"`
	Location       locationResponse `json:"location"`
	EventAt        time.Time        `json:"event_at"`
	ContactPhone   string           `json:"contact_phone"`
	Reward         decimal.Decimal  `json:"reward"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

type closePetRequest struct {
	Outcome Status `json:"outcome"`
}

type shareLinkResponse struct {
	Slug      string `json:"slug"`
	PublicURL string `json:"public_url"`
	QRCodeURL string `json:"qr_code_url"`
}

// createPetHandler godoc
// @Summary Reportar mascota
// @Description Crea un reporte de mascota perdida, encontrada, avistada o en adopción.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body CreateInput true "Reporte"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "tu cuenta está suspendida"
// @Router /pets [post]
func createPetHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
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

		p, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar reportes
// @Description Filtros: status (coma), species, district, q, near=lat,lng, radius_km. Más recientes primero.
// @Tags pets
// @Produce json
// @Param status query string false "lost,found,sighted,adoption,reunited,adopted"
// @Param species query string false "dog|cat|bird|rabbit|other"
// @Param district query string false "Distrito"
// @Param q query string false "Texto libre"
// @Param near query string false "lat,lng"
// @Param radius_km query number false "Radio en km (default 5)"
// @Param page query int false "Página"
// @Param page_size query int false "Tamaño de página"
// @Success 200 {object} web.PageResponse[petResponse]
// @Failure 400 {string} string "invalid filter"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := web.ParsePage(r)
		f, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Limit, f.Offset = page.Limit(), page.Offset()

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toPetResponses(items), page, total))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	f := ListFilter{
		Species:  Species(strings.TrimSpace(q.Get("species"))),
		District: q.Get("district"),
		Query:    q.Get("q"),
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := Status(strings.TrimSpace(s))
			switch st {
			case StatusLost, StatusFound, StatusSighted, StatusAdoption, StatusReunited, StatusAdopted:
				f.Statuses = append(f.Statuses, st)
			default:
				return ListFilter{}, errors.New("invalid status: " + s)
			}
		}
	}

	if near := strings.TrimSpace(q.Get("near")); near != "" {
		parts := strings.Split(near, ",")
		if len(parts) != 2 {
			return ListFilter{}, errors.New("near must be lat,lng")
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return ListFilter{}, errors.New("near must be lat,lng")
		}
		pt := geo.Point{Lat: lat, Lng: lng}
		if !pt.Valid() {
			return ListFilter{}, errors.New("near out of range")
		}
		f.Near = &pt
		if rk, ok := web.QueryFloat(r, "radius_km"); ok {
			f.RadiusKm = rk
		}
	}
	return f, nil
}

// getPetHandler godoc
// @Summary Detalle de reporte
// @Tags pets
// @Produce json
// @Param petID path string true "ID del reporte"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// getBySlugHandler godoc
// @Summary Reporte por link corto
// @Tags pets
// @Produce json
// @Param slug path string true "Slug base58"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Router /p/{slug} [get]
func getBySlugHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Editar reporte
// @Description Solo el reportante o un admin. Un reporte cerrado solo lo edita un admin.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID del reporte"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {string} string "invalid state"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
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

		actor := Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), actor, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Eliminar reporte
// @Tags pets
// @Param petID path string true "ID del reporte"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		actor := Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), actor); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// closePetHandler godoc
// @Summary Cerrar reporte
// @Description outcome=reunited (perdido/encontrado/avistado) o adopted (adopción). Si no se envía se infiere.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID del reporte"
// @Param payload body closePetRequest false "Resultado"
// @Success 200 {object} petResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {string} string "invalid state"
// @Router /pets/{petID}/close [post]
func closePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}

		var req closePetRequest
		if r.ContentLength != 0 {
			if err := web.DecodeJSON(r, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		petID := chi.URLParam(r, "petID")
		outcome := req.Outcome
		if outcome == "" {
			current, err := svc.GetByID(r.Context(), petID)
			if err != nil {
				writeError(w, err)
				return
			}
			outcome = StatusReunited
			if current.Status == StatusAdoption {
				outcome = StatusAdopted
			}
		}

		actor := Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
		p, err := svc.Close(r.Context(), petID, actor, outcome)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// shareLinkHandler godoc
// @Summary Link para compartir
// @Description Slug corto, URL pública y URL del QR para el afiche.
// @Tags pets
// @Produce json
// @Param petID path string true "ID del reporte"
// @Success 200 {object} shareLinkResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/share [get]
func shareLinkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := svc.ShareLink(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, shareLinkResponse{
			Slug:      link.Slug,
			PublicURL: link.PublicURL,
			QRCodeURL: link.QRCodeURL,
		})
	}
}

// listMyPetsHandler godoc
// @Summary Mis reportes
// @Tags pets
// @Produce json
// @Param page query int false "Página"
// @Param page_size query int false "Tamaño de página"
// @Success 200 {object} web.PageResponse[petResponse]
// @Failure 401 {string} string "unauthorized"
// @Router /me/pets [get]
func listMyPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		page := web.ParsePage(r)
		items, total, err := svc.ListByReporter(r.Context(), claims.UserID, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toPetResponses(items), page, total))
	}
}

func writeError(w http.ResponseWriter, err error) {
	if msg, ok := web.ValidationMessage(err); ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ToResponse expone el mapper JSON para otros módulos (matching).
func ToResponse(p Pet) any { return toPetResponse(p) }

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	photos := p.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return petResponse{
		ID:             p.ID,
		ReporterUserID: p.ReporterUserID,
		Status:         p.Status,
		Species:        p.Species,
		Breed:          p.Breed,
		Color:          p.Color,
		Size:           p.Size,
		Sex:            p.Sex,
		Name:           p.Name,
		Description:    p.Description,
		PhotoURLs:      photos,
		Location: locationResponse{
			Lat:      p.Location.Lat,
			Lng:      p.Location.Lng,
			Address:  p.Location.Address,
			District: p.Location.District,
		},
		EventAt:      p.EventAt,
		ContactPhone: p.ContactPhone,
		Reward:       p.Reward,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		ClosedAt:     p.ClosedAt,
	}
}
