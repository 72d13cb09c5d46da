package vehicles

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"profile-service/internal/respond"
	"profile-service/pkg/jwt"
	"profile-service/pkg/validation"
)

const (
	msgCreated  = "car registered successfully"
	msgUpdated  = "car updated successfully"
	msgDeleted  = "car deleted successfully"
	msgNotFound = "car not found"
	msgNoDriver = "you dont have a profile yet"
)

// Handler exposes vehicle HTTP endpoints.
type Handler struct {
	svc  *Service
	rs   *respond.Responder
	vldt *validation.Validator
}

func NewHandler(svc *Service, rs *respond.Responder, vldt *validation.Validator) *Handler {
	return &Handler{svc: svc, rs: rs, vldt: vldt}
}

// Routes returns the /drivers/car routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Get("/", h.Get)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)

	return r
}

// Options handles the public GET /vehicles/options.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Options())
}

type carResponse struct {
	Msg string `json:"msg"`
	Car any    `json:"car"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	c, err := h.svc.Get(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	var req CarRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), uid, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, carResponse{Msg: msgCreated, Car: c})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	var req CarUpdate
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), uid, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, carResponse{Msg: msgUpdated, Car: c})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	if err := h.svc.Delete(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Msg(msgDeleted))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoDriver):
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgNoDriver))
	case errors.Is(err, ErrNotFound):
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgNotFound))
	default:
		h.rs.Error(w, r, err)
	}
}
