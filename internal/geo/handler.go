// Package geo serves the read-only province and city reference data.
package geo

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"profile-service/internal/respond"
	"profile-service/internal/storage"
)

type Handler struct {
	geo storage.GeoRepository
	rs  *respond.Responder
}

func NewHandler(geo storage.GeoRepository, rs *respond.Responder) *Handler {
	return &Handler{geo: geo, rs: rs}
}

// Routes returns the public /geo routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/provinces", h.Provinces)
	r.Get("/provinces/{id}/cities", h.Cities)
	return r
}

func (h *Handler) Provinces(w http.ResponseWriter, r *http.Request) {
	list, err := h.geo.Provinces(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"provinces": list})
}

func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	id, err := cast.ToInt64E(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respond.JSON(w, http.StatusNotFound, respond.Msg("province not found"))
		return
	}
	list, err := h.geo.CitiesOf(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.JSON(w, http.StatusNotFound, respond.Msg("province not found"))
			return
		}
		h.rs.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"cities": list})
}
