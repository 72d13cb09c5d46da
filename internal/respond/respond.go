// Package respond writes JSON responses and maps service errors to HTTP.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"profile-service/internal/invariants"
	"profile-service/internal/storage"
	"profile-service/pkg/logger"
	"profile-service/pkg/validation"
)

// Body is the error and message envelope.
type Body struct {
	Msg   string `json:"msg"`
	Field string `json:"field,omitempty"`
}

// Msg is shorthand for a message-only body.
func Msg(msg string) Body { return Body{Msg: msg} }

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Responder maps errors that a handler did not handle itself.
type Responder struct {
	log          logger.ILogger
	onValidation func(reason string)
}

// New returns a Responder. onValidation, if set, sees the reason of every
// invariant violation written as 400.
func New(log logger.ILogger, onValidation func(reason string)) *Responder {
	return &Responder{log: log, onValidation: onValidation}
}

// Error writes the response for err:
// validation 400, not found 404, conflict 409, anything else 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *invariants.ValidationError
		ferr *validation.FieldError
		cerr *storage.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		if rs.onValidation != nil {
			rs.onValidation(string(verr.Reason))
		}
		JSON(w, http.StatusBadRequest, Body{Msg: verr.Error(), Field: verr.Field})
	case errors.As(err, &ferr):
		JSON(w, http.StatusBadRequest, Body{Msg: ferr.Error(), Field: ferr.Field})
	case errors.As(err, &cerr):
		JSON(w, http.StatusConflict, Body{Msg: cerr.Field + " already exists", Field: cerr.Field})
	case errors.Is(err, storage.ErrReferenced):
		JSON(w, http.StatusConflict, Msg("record is still referenced"))
	case errors.Is(err, storage.ErrNotFound):
		JSON(w, http.StatusNotFound, Msg("not found"))
	default:
		rs.log.With(
			logger.String("request_id", chimw.GetReqID(r.Context())),
			logger.String("path", r.URL.Path),
		).Error("request failed", logger.Error(err))
		JSON(w, http.StatusInternalServerError, Msg("internal error"))
	}
}

// Decode reads a JSON body into dst and validates it. Errors are written
// to w and false is returned.
func (rs *Responder) Decode(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		JSON(w, http.StatusBadRequest, Msg("invalid data"))
		return false
	}
	if err := v.Struct(dst); err != nil {
		rs.Error(w, r, err)
		return false
	}
	return true
}
