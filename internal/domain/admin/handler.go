package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/admin/dashboard", dashboardHandler(svc))
	r.Get("/admin/audit", listAuditHandler(svc))
}

type dashboardResponse struct {
	OpenPetsByStatus     map[pets.Status]int `json:"open_pets_by_status"`
	OpenPetsTotal        int                 `json:"open_pets_total"`
	ReunitedLast30Days   int                 `json:"reunited_last_30_days"`
	PendingReports       int                 `json:"pending_reports"`
	OpenTickets          int                 `json:"open_tickets"`
	UnverifiedBusinesses int                 `json:"unverified_businesses"`
	TotalUsers           int                 `json:"total_users"`
	UpcomingCampaigns    int                 `json:"upcoming_campaigns"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

type auditEntryResponse struct {
	ID          string         `json:"id"`
	AdminUserID string         `json:"admin_user_id"`
	Action      string         `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// dashboardHandler godoc
// @Summary Panel de admin
// @Tags admin
// @Produce json
// @Success 200 {object} dashboardResponse
// @Failure 403 {string} string "forbidden"
// @Router /admin/dashboard [get]
func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}
		d, err := svc.Dashboard(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		web.WriteJSON(w, http.StatusOK, dashboardResponse{
			OpenPetsByStatus:     d.OpenPetsByStatus,
			OpenPetsTotal:        d.OpenPetsTotal,
			ReunitedLast30Days:   d.ReunitedLast30Days,
			PendingReports:       d.PendingReports,
			OpenTickets:          d.OpenTickets,
			UnverifiedBusinesses: d.UnverifiedBusinesses,
			TotalUsers:           d.TotalUsers,
			UpcomingCampaigns:    d.UpcomingCampaigns,
			GeneratedAt:          d.GeneratedAt,
		})
	}
}

// listAuditHandler godoc
// @Summary Bitácora de acciones de admin
// @Tags admin
// @Produce json
// @Param admin_user_id query string false "Filtrar por admin"
// @Param target_type query string false "Tipo de objetivo"
// @Param target_id query string false "ID del objetivo"
// @Success 200 {object} web.PageResponse[auditEntryResponse]
// @Router /admin/audit [get]
func listAuditHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}
		page := web.ParsePage(r)
		q := r.URL.Query()
		items, total, err := svc.ListAudit(r.Context(), AuditFilter{
			AdminUserID: strings.TrimSpace(q.Get("admin_user_id")),
			TargetType:  strings.TrimSpace(q.Get("target_type")),
			TargetID:    strings.TrimSpace(q.Get("target_id")),
			Limit:       page.Limit(),
			Offset:      page.Offset(),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]auditEntryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, auditEntryResponse{
				ID:          e.ID,
				AdminUserID: e.AdminUserID,
				Action:      e.Action,
				TargetType:  e.TargetType,
				TargetID:    e.TargetID,
				Details:     e.Details,
				CreatedAt:   e.CreatedAt,
			})
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(out, page, total))
	}
}
