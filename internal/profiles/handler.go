package profiles

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"profile-service/internal/models"
	"profile-service/internal/respond"
	"profile-service/pkg/jwt"
	"profile-service/pkg/validation"
)

const (
	msgCreated  = "profile created successfully"
	msgUpdated  = "profile updated successfully"
	msgDeleted  = "profile deleted successfully"
	msgNotFound = "profile not found"
)

// Handler exposes profile HTTP endpoints.
type Handler struct {
	svc  *Service
	rs   *respond.Responder
	vldt *validation.Validator
}

func NewHandler(svc *Service, rs *respond.Responder, vldt *validation.Validator) *Handler {
	return &Handler{svc: svc, rs: rs, vldt: vldt}
}

// Routes returns the /profiles routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/", h.Create)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

type createResponse struct {
	Msg string `json:"msg"`
	ID  int64  `json:"id"`
}

type updateResponse struct {
	Msg     string          `json:"msg"`
	Profile *models.Profile `json:"profile"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, kind, ok := caller(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), uid, kind)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, kind, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), uid, kind, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, createResponse{Msg: msgCreated, ID: p.ID})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, kind, ok := caller(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), uid, kind, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updateResponse{Msg: msgUpdated, Profile: p})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, kind, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), uid, kind); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Msg(msgDeleted))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgNotFound))
		return
	}
	h.rs.Error(w, r, err)
}

// caller resolves the authenticated uid and the {kind} path segment.
func caller(w http.ResponseWriter, r *http.Request) (models.CallerID, models.Kind, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respond.JSON(w, http.StatusNotFound, respond.Msg("not found"))
		return 0, 0, false
	}
	uid, _ := jwt.CallerFrom(r.Context())
	return uid, kind, true
}
