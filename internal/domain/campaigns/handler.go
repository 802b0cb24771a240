package campaigns

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/middleware"
	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Post("/campaigns", createCampaignHandler(svc, bans))
	r.Get("/campaigns", listUpcomingHandler(svc))
	r.Get("/campaigns/{campaignID}", getCampaignHandler(svc))
	r.Put("/campaigns/{campaignID}", updateCampaignHandler(svc))
	r.Post("/campaigns/{campaignID}/cancel", cancelCampaignHandler(svc))

	r.Get("/me/campaigns", listMyCampaignsHandler(svc))

	r.Get("/admin/campaigns", adminListCampaignsHandler(svc))
	r.Post("/admin/campaigns/{campaignID}/publish", publishCampaignHandler(svc))
}

type campaignResponse struct {
	ID              string    `json:"id"`
	OrganizerUserID string    `json:"organizer_user_id"`
	Title           string    `json:"title"`
	Type            Type      `json:"type"`
	Description     string    `json:"description"`
	Address         string    `json:"address"`
	District        string    `json:"district"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	ContactPhone    string    `json:"contact_phone"`
	ImageURL        string    `json:"image_url"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// createCampaignHandler godoc
// @Summary Proponer campaña
// @Description Queda en draft hasta que un admin la publique.
// @Tags campaigns
// @Accept json
// @Produce json
// @Param payload body Input true "Campaña"
// @Success 201 {object} campaignResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "tu cuenta está suspendida"
// @Router /campaigns [post]
func createCampaignHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequirePoster(w, r, bans)
		if !ok {
			return
		}
		var in Input
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toCampaignResponse(c))
	}
}

// listUpcomingHandler godoc
// @Summary Próximas campañas
// @Description Publicadas y vigentes, ordenadas por fecha de inicio.
// @Tags campaigns
// @Produce json
// @Param district query string false "Distrito"
// @Param type query string false "sterilization|adoption|vaccination|other"
// @Success 200 {object} web.PageResponse[campaignResponse]
// @Router /campaigns [get]
func listUpcomingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := web.ParsePage(r)
		q := r.URL.Query()
		items, total, err := svc.ListUpcoming(r.Context(), q.Get("district"), Type(strings.TrimSpace(q.Get("type"))), page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toCampaignResponses(items), page, total))
	}
}

// getCampaignHandler godoc
// @Summary Detalle de campaña
// @Tags campaigns
// @Produce json
// @Param campaignID path string true "ID de la campaña"
// @Success 200 {object} campaignResponse
// @Failure 404 {string} string "campaign not found"
// @Router /campaigns/{campaignID} [get]
func getCampaignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), chi.URLParam(r, "campaignID"))
		if err != nil {
			writeError(w, err)
			return
		}
		// Borradores: solo organizador o admin.
		if c.Status != StatusPublished {
			claims, _ := middleware.GetClaims(r.Context())
			if !claims.IsAdmin() && claims.UserID != c.OrganizerUserID {
				http.Error(w, "campaign not found", http.StatusNotFound)
				return
			}
		}
		web.WriteJSON(w, http.StatusOK, toCampaignResponse(c))
	}
}

// updateCampaignHandler godoc
// @Summary Editar campaña
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaignID path string true "ID de la campaña"
// @Param payload body Input true "Campaña"
// @Success 200 {object} campaignResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "invalid state"
// @Router /campaigns/{campaignID} [put]
func updateCampaignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		var in Input
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.Update(r.Context(), chi.URLParam(r, "campaignID"), claims.UserID, claims.IsAdmin(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toCampaignResponse(c))
	}
}

// cancelCampaignHandler godoc
// @Summary Cancelar campaña
// @Tags campaigns
// @Produce json
// @Param campaignID path string true "ID de la campaña"
// @Success 200 {object} campaignResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "invalid state"
// @Router /campaigns/{campaignID}/cancel [post]
func cancelCampaignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		c, err := svc.Cancel(r.Context(), chi.URLParam(r, "campaignID"), claims.UserID, claims.IsAdmin())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toCampaignResponse(c))
	}
}

// listMyCampaignsHandler godoc
// @Summary Mis campañas
// @Tags campaigns
// @Produce json
// @Success 200 {object} web.PageResponse[campaignResponse]
// @Router /me/campaigns [get]
func listMyCampaignsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		page := web.ParsePage(r)
		items, total, err := svc.ListByOrganizer(r.Context(), claims.UserID, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toCampaignResponses(items), page, total))
	}
}

// adminListCampaignsHandler godoc
// @Summary Campañas por estado (admin)
// @Tags admin
// @Produce json
// @Param status query string false "draft|published|cancelled"
// @Success 200 {object} web.PageResponse[campaignResponse]
// @Router /admin/campaigns [get]
func adminListCampaignsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}
		page := web.ParsePage(r)
		st := Status(strings.TrimSpace(r.URL.Query().Get("status")))
		items, total, err := svc.ListByStatus(r.Context(), st, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toCampaignResponses(items), page, total))
	}
}

// publishCampaignHandler godoc
// @Summary Publicar campaña (admin)
// @Tags admin
// @Produce json
// @Param campaignID path string true "ID de la campaña"
// @Success 200 {object} campaignResponse
// @Failure 409 {string} string "invalid state"
// @Router /admin/campaigns/{campaignID}/publish [post]
func publishCampaignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}
		c, err := svc.Publish(r.Context(), chi.URLParam(r, "campaignID"), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toCampaignResponse(c))
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
		http.Error(w, "campaign not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCampaignResponses(items []Campaign) []campaignResponse {
	out := make([]campaignResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCampaignResponse(c))
	}
	return out
}

func toCampaignResponse(c Campaign) campaignResponse {
	return campaignResponse{
		ID:              c.ID,
		OrganizerUserID: c.OrganizerUserID,
		Title:           c.Title,
		Type:            c.Type,
		Description:     c.Description,
		Address:         c.Address,
		District:        c.District,
		Lat:             c.Lat,
		Lng:             c.Lng,
		StartsAt:        c.StartsAt,
		EndsAt:          c.EndsAt,
		ContactPhone:    c.ContactPhone,
		ImageURL:        c.ImageURL,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
