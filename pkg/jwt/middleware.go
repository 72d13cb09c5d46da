package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"profile-service/internal/models"
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(raw string) (models.CallerID, error)
}

// FailureObserver is told about every rejected credential.
type FailureObserver func(Reason)

type ctxKey string

const callerCtxKey ctxKey = "caller_id"

// BearerToken extracts the token from an Authorization header value.
// Anything other than exactly "Bearer <token>" counts as no token.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Authenticate verifies the bearer token of every request.
// Requests without credentials continue anonymously; presented but invalid
// credentials are rejected with 401.
func Authenticate(v TokenVerifier, observe FailureObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := v.Verify(BearerToken(r.Header.Get("Authorization")))
			if err != nil {
				var f *AuthFailure
				if !errors.As(err, &f) {
					f = failure(ReasonMalformed, msgMalformed)
				}
				if f.Reason == ReasonMissing {
					next.ServeHTTP(w, r)
					return
				}
				if observe != nil {
					observe(f.Reason)
				}
				writeUnauthorized(w, f.Msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), uid)))
		})
	}
}

// RequireAuth rejects requests that carry no verified caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFrom(r.Context()); !ok {
			writeUnauthorized(w, "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithCaller stores a verified caller identity in ctx.
func WithCaller(ctx context.Context, uid models.CallerID) context.Context {
	return context.WithValue(ctx, callerCtxKey, uid)
}

// CallerFrom returns the verified caller identity, if any.
func CallerFrom(ctx context.Context) (models.CallerID, bool) {
	uid, ok := ctx.Value(callerCtxKey).(models.CallerID)
	return uid, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
