package matching

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/matching", func(mr chi.Router) {
		mr.Get("/pets/{petID}", potentialMatchesHandler(svc))
		mr.Get("/search", searchHandler(svc))
	})
}

type matchResponse struct {
	Pet   any     `json:"pet"`
	Score float64 `json:"score"`
}

// potentialMatchesHandler godoc
// @Summary Posibles coincidencias
// @Description Reportes abiertos del estado complementario (perdido ↔ encontrado/avistado), misma especie, ordenados por similitud.
// @Tags matching
// @Produce json
// @Param petID path string true "ID del reporte"
// @Param limit query int false "Máximo de resultados (default 10)"
// @Success 200 {array} matchResponse
// @Failure 404 {string} string "pet not found"
// @Failure 503 {string} string "matching disabled"
// @Router /matching/pets/{petID} [get]
func potentialMatchesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.PotentialMatches(r.Context(), chi.URLParam(r, "petID"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toMatchResponses(items))
	}
}

// searchHandler godoc
// @Summary Búsqueda con IA
// @Description Búsqueda semántica en texto libre sobre reportes abiertos.
// @Tags matching
// @Produce json
// @Param q query string true "Descripción libre"
// @Param species query string false "dog|cat|bird|rabbit|other"
// @Param limit query int false "Máximo de resultados (default 10)"
// @Success 200 {array} matchResponse
// @Failure 400 {string} string "invalid input"
// @Failure 503 {string} string "matching disabled"
// @Router /matching/search [get]
func searchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		items, err := svc.Search(r.Context(), q.Get("q"), SearchFilter{
			Species: pets.Species(strings.TrimSpace(q.Get("species"))),
			Limit:   limit,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toMatchResponses(items))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDisabled):
		http.Error(w, "matching disabled", http.StatusServiceUnavailable)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, pets.ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMatchResponses(items []Match) []matchResponse {
	out := make([]matchResponse, 0, len(items))
	for _, m := range items {
		out = append(out, matchResponse{Pet: pets.ToResponse(m.Pet), Score: m.Score})
	}
	return out
}
