package location

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/web"
	"pet-reunite/internal/ports/geocoding"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/geo/search", searchHandler(svc))
	r.Get("/geo/reverse", reverseHandler(svc))
}

// searchHandler godoc
// @Summary Buscar dirección
// @Tags geo
// @Produce json
// @Param q query string true "Dirección o lugar"
// @Param limit query int false "Máximo de resultados (default 5)"
// @Success 200 {array} geocoding.Place
// @Failure 400 {string} string "invalid query"
// @Failure 503 {string} string "geocoding disabled"
// @Router /geo/search [get]
func searchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		places, err := svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, places)
	}
}

// reverseHandler godoc
// @Summary Dirección de un punto
// @Tags geo
// @Produce json
// @Param lat query number true "Latitud"
// @Param lng query number true "Longitud"
// @Success 200 {object} geocoding.Place
// @Failure 400 {string} string "invalid coordinates"
// @Failure 404 {string} string "no results"
// @Router /geo/reverse [get]
func reverseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, okLat := web.QueryFloat(r, "lat")
		lng, okLng := web.QueryFloat(r, "lng")
		if !okLat || !okLng {
			http.Error(w, "invalid coordinates", http.StatusBadRequest)
			return
		}
		place, err := svc.Reverse(r.Context(), lat, lng)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, place)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid query", http.StatusBadRequest)
	case errors.Is(err, ErrDisabled):
		http.Error(w, "geocoding disabled", http.StatusServiceUnavailable)
	case errors.Is(err, geocoding.ErrNoResults):
		http.Error(w, "no results", http.StatusNotFound)
	default:
		http.Error(w, "geocoding unavailable", http.StatusBadGateway)
	}
}
