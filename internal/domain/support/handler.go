package support

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Post("/support/tickets", createTicketHandler(svc, bans))
	r.Get("/support/tickets", listMyTicketsHandler(svc))
	r.Get("/support/tickets/{ticketID}", getTicketHandler(svc))
	r.Post("/support/tickets/{ticketID}/messages", replyTicketHandler(svc))

	r.Get("/admin/tickets", adminListTicketsHandler(svc))
	r.Patch("/admin/tickets/{ticketID}", adminUpdateTicketHandler(svc))
}

type messageResponse struct {
	ID           string    `json:"id"`
	AuthorUserID string    `json:"author_user_id"`
	Body         string    `json:"body"`
	FromStaff    bool      `json:"from_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

type ticketResponse struct {
	ID         string            `json:"id"`
	Number     string            `json:"number"`
	UserID     string            `json:"user_id"`
	Subject    string            `json:"subject"`
	Category   Category          `json:"category"`
	Priority   Priority          `json:"priority"`
	Status     Status            `json:"status"`
	Messages   []messageResponse `json:"messages,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	ResolvedAt *time.Time        `json:"resolved_at,omitempty"`
}

type adminUpdateRequest struct {
	Status   *Status   `json:"status"`
	Priority *Priority `json:"priority"`
}

// createTicketHandler godoc
// @Summary Abrir ticket de soporte
// @Tags support
// @Accept json
// @Produce json
// @Param payload body CreateInput true "Ticket"
// @Success 201 {object} ticketResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "tu cuenta está suspendida"
// @Router /support/tickets [post]
func createTicketHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
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
		t, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toTicketResponse(t))
	}
}

// listMyTicketsHandler godoc
// @Summary Mis tickets
// @Tags support
// @Produce json
// @Success 200 {object} web.PageResponse[ticketResponse]
// @Router /support/tickets [get]
func listMyTicketsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		page := web.ParsePage(r)
		items, total, err := svc.ListMine(r.Context(), claims.UserID, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toTicketResponses(items), page, total))
	}
}

// getTicketHandler godoc
// @Summary Detalle de ticket con mensajes
// @Tags support
// @Produce json
// @Param ticketID path string true "ID del ticket"
// @Success 200 {object} ticketResponse
// @Failure 404 {string} string "ticket not found"
// @Router /support/tickets/{ticketID} [get]
func getTicketHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		t, err := svc.Get(r.Context(), chi.URLParam(r, "ticketID"), claims.UserID, claims.IsAdmin())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toTicketResponse(t))
	}
}

// replyTicketHandler godoc
// @Summary Responder ticket
// @Description Responder un ticket resuelto lo reabre; uno cerrado no acepta mensajes.
// @Tags support
// @Accept json
// @Produce json
// @Param ticketID path string true "ID del ticket"
// @Param payload body ReplyInput true "Mensaje"
// @Success 200 {object} ticketResponse
// @Failure 404 {string} string "ticket not found"
// @Failure 409 {string} string "invalid state"
// @Router /support/tickets/{ticketID}/messages [post]
func replyTicketHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		var in ReplyInput
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err := svc.Reply(r.Context(), chi.URLParam(r, "ticketID"), claims.UserID, claims.IsAdmin(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toTicketResponse(t))
	}
}

// adminListTicketsHandler godoc
// @Summary Tickets por estado (admin)
// @Tags admin
// @Produce json
// @Param status query string false "open|in_progress|resolved|closed"
// @Success 200 {object} web.PageResponse[ticketResponse]
// @Router /admin/tickets [get]
func adminListTicketsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := web.RequireAdmin(w, r); !ok {
			return
		}
		page := web.ParsePage(r)
		st := Status(strings.TrimSpace(r.URL.Query().Get("status")))
		items, total, err := svc.List(r.Context(), st, page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toTicketResponses(items), page, total))
	}
}

// adminUpdateTicketHandler godoc
// @Summary Cambiar estado / prioridad (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param ticketID path string true "ID del ticket"
// @Param payload body adminUpdateRequest true "Cambios"
// @Success 200 {object} ticketResponse
// @Failure 409 {string} string "invalid state"
// @Router /admin/tickets/{ticketID} [patch]
func adminUpdateTicketHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}
		var req adminUpdateRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Status == nil && req.Priority == nil {
			http.Error(w, "nothing to update", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "ticketID")
		var (
			t   Ticket
			err error
		)
		if req.Priority != nil {
			if t, err = svc.SetPriority(r.Context(), id, claims.UserID, *req.Priority); err != nil {
				writeError(w, err)
				return
			}
		}
		if req.Status != nil {
			if t, err = svc.SetStatus(r.Context(), id, claims.UserID, *req.Status); err != nil {
				writeError(w, err)
				return
			}
		}
		web.WriteJSON(w, http.StatusOK, toTicketResponse(t))
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
		http.Error(w, "ticket not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toTicketResponses(items []Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTicketResponse(t))
	}
	return out
}

func toTicketResponse(t Ticket) ticketResponse {
	out := ticketResponse{
		ID:         t.ID,
		Number:     t.Number,
		UserID:     t.UserID,
		Subject:    t.Subject,
		Category:   t.Category,
		Priority:   t.Priority,
		Status:     t.Status,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		ResolvedAt: t.ResolvedAt,
	}
	for _, m := range t.Messages {
		out.Messages = append(out.Messages, messageResponse{
			ID:           m.ID,
			AuthorUserID: m.AuthorUserID,
			Body:         m.Body,
			FromStaff:    m.FromStaff,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}
