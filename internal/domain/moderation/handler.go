package moderation

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Post("/reports", createReportHandler(svc, bans))

	r.Get("/admin/reports", adminListReportsHandler(svc))
	r.Post("/admin/reports/{reportID}/resolve", resolveReportHandler(svc))
	r.Post("/admin/reports/{reportID}/dismiss", dismissReportHandler(svc))
}

type reportResponse struct {
	ID             string     `json:"id"`
	ReporterUserID string     `json:"reporter_user_id"`
	TargetType     TargetType `json:"target_type"`
	TargetID       string     `json:"target_id"`
	Reason         Reason     `json:"reason"`
	Details        string     `json:"details"`
	Status         Status     `json:"status"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

type dismissRequest struct {
	Resolution string `json:"resolution"`
}

// createReportHandler godoc
// @Summary Reportar contenido
// @Tags moderation
// @Accept json
// @Produce json
// @Param payload body CreateInput true "Reporte"
// @Success 201 {object} reportResponse
// @Failure 400 {string} string "validación"
// @Failure 409 {string} string "already reported"
// @Router /reports [post]
func createReportHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
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
		rep, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

// adminListReportsHandler godoc
// @Summary Cola de moderación (admin)
// @Tags admin
// @Produce json
// @Param status query string false "pending|resolved|dismissed (default pending)"
// @Success 200 {object} web.PageResponse[reportResponse]
// @Router /admin/reports [get]
func adminListReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}
		page := web.ParsePage(r)

		st := Status(strings.TrimSpace(r.URL.Query().Get("status")))
		switch st {
		case "":
			st = StatusPending
		case "all":
			st = ""
		case StatusPending, StatusResolved, StatusDismissed:
		default:
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		items, total, err := svc.List(r.Context(), st, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]reportResponse, 0, len(items))
		for _, x := range items {
			out = append(out, toReportResponse(x))
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(out, page, total))
	}
}

// resolveReportHandler godoc
// @Summary Resolver reporte (admin)
// @Description remove_content=true borra el contenido reportado (o suspende al usuario).
// @Tags admin
// @Accept json
// @Produce json
// @Param reportID path string true "ID del reporte"
// @Param payload body ResolveInput true "Resolución"
// @Success 200 {object} reportResponse
// @Failure 404 {string} string "report not found"
// @Failure 409 {string} string "invalid state"
// @Router /admin/reports/{reportID}/resolve [post]
func resolveReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}
		var in ResolveInput
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rep, err := svc.Resolve(r.Context(), chi.URLParam(r, "reportID"), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

// dismissReportHandler godoc
// @Summary Descartar reporte (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param reportID path string true "ID del reporte"
// @Param payload body dismissRequest false "Motivo"
// @Success 200 {object} reportResponse
// @Failure 404 {string} string "report not found"
// @Failure 409 {string} string "invalid state"
// @Router /admin/reports/{reportID}/dismiss [post]
func dismissReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}
		var req dismissRequest
		if r.ContentLength != 0 {
			if err := web.DecodeJSON(r, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		rep, err := svc.Dismiss(r.Context(), chi.URLParam(r, "reportID"), claims.UserID, req.Resolution)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func writeError(w http.ResponseWriter, err error) {
	if msg, ok := web.ValidationMessage(err); ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReportResponse(r Report) reportResponse {
	return reportResponse{
		ID:             r.ID,
		ReporterUserID: r.ReporterUserID,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		Reason:         r.Reason,
		Details:        r.Details,
		Status:         r.Status,
		ResolvedBy:     r.ResolvedBy,
		Resolution:     r.Resolution,
		CreatedAt:      r.CreatedAt,
		ResolvedAt:     r.ResolvedAt,
	}
}
