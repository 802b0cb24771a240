package gamification

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
)

// NameResolver resuelve nombres visibles para el ranking (lo implementa profiles).
type NameResolver interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, names NameResolver) {
	r.Get("/me/points", mySummaryHandler(svc))
	r.Get("/gamification/leaderboard", leaderboardHandler(svc, names))
	r.Get("/gamification/levels", levelsHandler())
}

type levelResponse struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	NextName  string `json:"next_name,omitempty"`
	NextAt    int    `json:"next_at,omitempty"`
	Progress  int    `json:"progress"`
}

type entryResponse struct {
	Action    Action    `json:"action"`
	RefID     string    `json:"ref_id"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

type summaryResponse struct {
	UserID string          `json:"user_id"`
	Total  int             `json:"total"`
	Level  levelResponse   `json:"level"`
	Recent []entryResponse `json:"recent"`
}

type standingResponse struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Total       int    `json:"total"`
	Level       string `json:"level"`
}

type tierResponse struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
}

// mySummaryHandler godoc
// @Summary Mis puntos
// @Description Total de puntos, nivel actual y últimos movimientos del usuario autenticado.
// @Tags gamification
// @Produce json
// @Success 200 {object} summaryResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/points [get]
func mySummaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}

		s, err := svc.Summary(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		web.WriteJSON(w, http.StatusOK, toSummaryResponse(s))
	}
}

// leaderboardHandler godoc
// @Summary Ranking de la comunidad
// @Tags gamification
// @Produce json
// @Param limit query int false "Cantidad (default 10, max 100)"
// @Success 200 {array} standingResponse
// @Router /gamification/leaderboard [get]
func leaderboardHandler(svc *Service, names NameResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		items, err := svc.Leaderboard(r.Context(), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		display := map[string]string{}
		if names != nil && len(items) > 0 {
			ids := make([]string, 0, len(items))
			for _, s := range items {
				ids = append(ids, s.UserID)
			}
			// Sin nombres el ranking igual sirve.
			if m, err := names.DisplayNames(r.Context(), ids); err == nil {
				display = m
			}
		}

		out := make([]standingResponse, 0, len(items))
		for i, s := range items {
			out = append(out, standingResponse{
				Rank:        i + 1,
				UserID:      s.UserID,
				DisplayName: display[s.UserID],
				Total:       s.Total,
				Level:       LevelFor(s.Total).Name,
			})
		}
		web.WriteJSON(w, http.StatusOK, out)
	}
}

func levelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := Tiers()
		out := make([]tierResponse, 0, len(ts))
		for _, t := range ts {
			out = append(out, tierResponse{Name: t.Name, MinPoints: t.MinPoints})
		}
		web.WriteJSON(w, http.StatusOK, out)
	}
}

func toLevelResponse(l Level) levelResponse {
	return levelResponse{
		Name:      l.Name,
		MinPoints: l.MinPoints,
		NextName:  l.NextName,
		NextAt:    l.NextAt,
		Progress:  l.Progress,
	}
}

func toSummaryResponse(s Summary) summaryResponse {
	recent := make([]entryResponse, 0, len(s.Recent))
	for _, e := range s.Recent {
		recent = append(recent, entryResponse{
			Action:    e.Action,
			RefID:     e.RefID,
			Points:    e.Points,
			CreatedAt: e.CreatedAt,
		})
	}
	return summaryResponse{
		UserID: s.UserID,
		Total:  s.Total,
		Level:  toLevelResponse(s.Level),
		Recent: recent,
	}
}
