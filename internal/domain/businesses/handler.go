package businesses

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reunite/internal/platform/geo"
	"pet-reunite/internal/platform/web"
)

func RegisterRoutes(r chi.Router, svc *Service, bans web.BanChecker) {
	r.Post("/businesses", createBusinessHandler(svc, bans))
	r.Get("/businesses", listBusinessesHandler(svc))
	r.Get("/businesses/{businessID}", getBusinessHandler(svc))
	r.Put("/businesses/{businessID}", updateBusinessHandler(svc))
	r.Delete("/businesses/{businessID}", deleteBusinessHandler(svc))

	r.Get("/businesses/{businessID}/ratings", listRatingsHandler(svc))
	r.Post("/businesses/{businessID}/ratings", rateBusinessHandler(svc, bans))

	r.Get("/me/businesses", listMyBusinessesHandler(svc))

	r.Patch("/admin/businesses/{businessID}/verify", verifyBusinessHandler(svc))
}

type businessResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	Address     string    `json:"address"`
	District    string    `json:"district"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Hours       string    `json:"hours"`
	Products    []Product `json:"products"`
	Verified    bool      `json:"verified"`
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ratingResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id"`
	Stars      int       `json:"stars"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type rateResponse struct {
	Rating    ratingResponse `json:"rating"`
	RatingAvg float64        `json:"rating_avg"`
	Count     int            `json:"rating_count"`
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

// createBusinessHandler godoc
// @Summary Registrar negocio
// @Tags businesses
// @Accept json
// @Produce json
// @Param payload body Input true "Negocio"
// @Success 201 {object} businessResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "tu cuenta está suspendida"
// @Router /businesses [post]
func createBusinessHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
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
		b, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toBusinessResponse(b))
	}
}

// listBusinessesHandler godoc
// @Summary Directorio de negocios
// @Tags businesses
// @Produce json
// @Param type query string false "veterinary|petshop|grooming|shelter|other"
// @Param district query string false "Distrito"
// @Param q query string false "Texto libre"
// @Param verified query bool false "Solo verificados"
// @Param lat query number false "Latitud"
// @Param lng query number false "Longitud"
// @Param radius_km query number false "Radio en km"
// @Param page query int false "Página"
// @Param page_size query int false "Tamaño de página"
// @Success 200 {object} web.PageResponse[businessResponse]
// @Router /businesses [get]
func listBusinessesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := web.ParsePage(r)
		f := ListFilter{
			Type:     Type(strings.TrimSpace(q.Get("type"))),
			District: q.Get("district"),
			Query:    q.Get("q"),
			Limit:    page.Limit(),
			Offset:   page.Offset(),
		}
		f.VerifiedOnly, _ = strconv.ParseBool(q.Get("verified"))

		lat, okLat := web.QueryFloat(r, "lat")
		lng, okLng := web.QueryFloat(r, "lng")
		if okLat && okLng {
			f.Near = &geo.Point{Lat: lat, Lng: lng}
			f.RadiusKm, _ = web.QueryFloat(r, "radius_km")
		}

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toBusinessResponses(items), page, total))
	}
}

// listMyBusinessesHandler godoc
// @Summary Mis negocios
// @Tags businesses
// @Produce json
// @Success 200 {object} web.PageResponse[businessResponse]
// @Router /me/businesses [get]
func listMyBusinessesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		page := web.ParsePage(r)
		items, total, err := svc.List(r.Context(), ListFilter{
			OwnerUserID: claims.UserID,
			Limit:       page.Limit(),
			Offset:      page.Offset(),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(toBusinessResponses(items), page, total))
	}
}

// getBusinessHandler godoc
// @Summary Detalle de negocio
// @Tags businesses
// @Produce json
// @Param businessID path string true "ID del negocio"
// @Success 200 {object} businessResponse
// @Failure 404 {string} string "business not found"
// @Router /businesses/{businessID} [get]
func getBusinessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), chi.URLParam(r, "businessID"))
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
	}
}

// updateBusinessHandler godoc
// @Summary Editar negocio
// @Description Dueño o admin. Reemplaza todos los campos editables.
// @Tags businesses
// @Accept json
// @Produce json
// @Param businessID path string true "ID del negocio"
// @Param payload body Input true "Negocio"
// @Success 200 {object} businessResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "business not found"
// @Router /businesses/{businessID} [put]
func updateBusinessHandler(svc *Service) http.HandlerFunc {
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
		b, err := svc.Update(r.Context(), chi.URLParam(r, "businessID"), claims.UserID, claims.IsAdmin(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
	}
}

// deleteBusinessHandler godoc
// @Summary Eliminar negocio
// @Tags businesses
// @Param businessID path string true "ID del negocio"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "business not found"
// @Router /businesses/{businessID} [delete]
func deleteBusinessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "businessID"), claims.UserID, claims.IsAdmin()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// rateBusinessHandler godoc
// @Summary Calificar negocio
// @Description Una calificación por usuario; volver a calificar la reemplaza. El dueño no puede calificarse.
// @Tags businesses
// @Accept json
// @Produce json
// @Param businessID path string true "ID del negocio"
// @Param payload body RateInput true "Calificación"
// @Success 200 {object} rateResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "business not found"
// @Router /businesses/{businessID}/ratings [post]
func rateBusinessHandler(svc *Service, bans web.BanChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequirePoster(w, r, bans)
		if !ok {
			return
		}
		var in RateInput
		if err := web.DecodeJSON(r, &in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rating, b, err := svc.Rate(r.Context(), chi.URLParam(r, "businessID"), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, rateResponse{
			Rating:    toRatingResponse(rating),
			RatingAvg: b.RatingAvg,
			Count:     b.RatingCount,
		})
	}
}

// listRatingsHandler godoc
// @Summary Calificaciones de un negocio
// @Tags businesses
// @Produce json
// @Param businessID path string true "ID del negocio"
// @Success 200 {object} web.PageResponse[ratingResponse]
// @Failure 404 {string} string "business not found"
// @Router /businesses/{businessID}/ratings [get]
func listRatingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := web.ParsePage(r)
		items, total, err := svc.ListRatings(r.Context(), chi.URLParam(r, "businessID"), page.Limit(), page.Offset())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]ratingResponse, 0, len(items))
		for _, x := range items {
			out = append(out, toRatingResponse(x))
		}
		web.WriteJSON(w, http.StatusOK, web.NewPageResponse(out, page, total))
	}
}

// verifyBusinessHandler godoc
// @Summary Verificar negocio (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param businessID path string true "ID del negocio"
// @Param payload body verifyRequest true "Verificado"
// @Success 200 {object} businessResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "business not found"
// @Router /admin/businesses/{businessID}/verify [patch]
func verifyBusinessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := web.RequireAdmin(w, r)
		if !ok {
			return
		}
		var req verifyRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		b, err := svc.Verify(r.Context(), chi.URLParam(r, "businessID"), claims.UserID, req.Verified)
		if err != nil {
			writeError(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
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
		http.Error(w, "business not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toBusinessResponses(items []Business) []businessResponse {
	out := make([]businessResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBusinessResponse(b))
	}
	return out
}

func toBusinessResponse(b Business) businessResponse {
	products := b.Products
	if products == nil {
		products = []Product{}
	}
	return businessResponse{
		ID:          b.ID,
		OwnerUserID: b.OwnerUserID,
		Name:        b.Name,
		Type:        b.Type,
		Description: b.Description,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		Address:     b.Address,
		District:    b.District,
		Lat:         b.Lat,
		Lng:         b.Lng,
		Hours:       b.Hours,
		Products:    products,
		Verified:    b.Verified,
		RatingAvg:   b.RatingAvg,
		RatingCount: b.RatingCount,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toRatingResponse(r Rating) ratingResponse {
	return ratingResponse{
		ID:         r.ID,
		BusinessID: r.BusinessID,
		UserID:     r.UserID,
		Stars:      r.Stars,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
