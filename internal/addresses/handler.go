package addresses

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"profile-service/internal/respond"
	"profile-service/pkg/jwt"
	"profile-service/pkg/validation"
)

const (
	msgAdded         = "added address"
	msgEdited        = "address edited"
	msgEditedPending = "address edited, waiting for confirmation"
	msgDeleted       = "address deleted"
	msgEditMissing   = "address that you want to modify is not found"
	msgDeleteMissing = "address that you want to delete does not exist"
	msgMissing       = "address not found"
	msgNoProfile     = "you dont have a profile yet"
)

// Handler exposes address HTTP endpoints.
type Handler struct {
	svc  *Service
	rs   *respond.Responder
	vldt *validation.Validator
}

func NewHandler(svc *Service, rs *respond.Responder, vldt *validation.Validator) *Handler {
	return &Handler{svc: svc, rs: rs, vldt: vldt}
}

// Routes returns the /addresses routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Put("/{id}", h.Edit)
	r.Delete("/{id}", h.Delete)

	return r
}

// DriverRoutes returns the /drivers/address routes.
func (h *Handler) DriverRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Get("/", h.GetDriver)
	r.Post("/", h.CreateDriver)
	r.Put("/", h.EditDriver)

	return r
}

type listResponse struct {
	Addresses any `json:"addresses"`
}

type addResponse struct {
	Msg string `json:"msg"`
	ID  int64  `json:"id"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	list, err := h.svc.List(r.Context(), uid)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Addresses: list})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	var req AddRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	a, err := h.svc.Add(r.Context(), uid, req)
	if err != nil {
		h.fail(w, r, err, msgMissing)
		return
	}
	respond.JSON(w, http.StatusCreated, addResponse{Msg: msgAdded, ID: a.ID})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	id, err := cast.ToInt64E(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgEditMissing))
		return
	}
	var req EditRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	res, err := h.svc.Edit(r.Context(), uid, id, req)
	if err != nil {
		h.fail(w, r, err, msgEditMissing)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Msg(editMsg(res)))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	id, err := cast.ToInt64E(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgDeleteMissing))
		return
	}
	if err := h.svc.Delete(r.Context(), uid, id); err != nil {
		h.fail(w, r, err, msgDeleteMissing)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Msg(msgDeleted))
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	a, err := h.svc.GetDriverAddress(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err, msgMissing)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	var req AddRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	a, err := h.svc.CreateDriverAddress(r.Context(), uid, req)
	if err != nil {
		h.fail(w, r, err, msgMissing)
		return
	}
	respond.JSON(w, http.StatusCreated, addResponse{Msg: msgAdded, ID: a.ID})
}

func (h *Handler) EditDriver(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	var req EditRequest
	if !h.rs.Decode(w, r, h.vldt, &req) {
		return
	}
	res, err := h.svc.EditDriverAddress(r.Context(), uid, req)
	if err != nil {
		h.fail(w, r, err, msgEditMissing)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Msg(editMsg(res)))
}

// fail writes path-specific not-found messages and defers the rest to the
// responder.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, missing string) {
	switch {
	case errors.Is(err, ErrNoProfile):
		respond.JSON(w, http.StatusNotFound, respond.Msg(msgNoProfile))
	case errors.Is(err, ErrNotFound):
		respond.JSON(w, http.StatusNotFound, respond.Msg(missing))
	default:
		h.rs.Error(w, r, err)
	}
}

func editMsg(res *EditResult) string {
	if res.owner != nil {
		return msgEditedPending
	}
	return msgEdited
}
