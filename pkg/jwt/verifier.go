package jwt

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"profile-service/internal/models"
)

// Claims is the verified payload. Only uid is interpreted.
type Claims struct {
	UID any `json:"uid"`
	gojwt.RegisteredClaims
}

// Reason classifies a verification failure.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonExpired   Reason = "expired"
	ReasonMalformed Reason = "malformed"
)

const (
	msgMissing   = "token not provided or authorization header has invalid structure"
	msgExpired   = "access token expired"
	msgMalformed = "invalid token"
)

// AuthFailure is returned by Verify. Compare with errors.Is against
// ErrMissing, ErrExpired or ErrMalformed.
type AuthFailure struct {
	Reason Reason
	Msg    string
}

func (f *AuthFailure) Error() string { return f.Msg }

// Is matches any AuthFailure with the same reason.
func (f *AuthFailure) Is(target error) bool {
	t, ok := target.(*AuthFailure)
	return ok && t.Reason == f.Reason
}

var (
	ErrMissing   = &AuthFailure{Reason: ReasonMissing, Msg: msgMissing}
	ErrExpired   = &AuthFailure{Reason: ReasonExpired, Msg: msgExpired}
	ErrMalformed = &AuthFailure{Reason: ReasonMalformed, Msg: msgMalformed}
)

func failure(r Reason, msg string) *AuthFailure { return &AuthFailure{Reason: r, Msg: msg} }

// Option tunes a Verifier.
type Option func(*verifierOptions)

type verifierOptions struct {
	leeway time.Duration
	now    func() time.Time
}

// WithLeeway tolerates clock skew on exp/nbf/iat.
func WithLeeway(d time.Duration) Option {
	return func(o *verifierOptions) { o.leeway = d }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *verifierOptions) { o.now = now }
}

// Verifier checks bearer tokens against one key and a fixed algorithm allow-list.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	key     any
	methods []string
	parser  *gojwt.Parser
}

// NewVerifier builds a Verifier. Every algorithm must be known and must fit the key
// type: []byte for HS*, *rsa.PublicKey for RS*/PS*, *ecdsa.PublicKey for ES*,
// ed25519.PublicKey for EdDSA. "none" is never accepted.
func NewVerifier(key any, algorithms []string, opts ...Option) (*Verifier, error) {
	if len(algorithms) == 0 {
		return nil, errors.New("jwt: at least one signing algorithm is required")
	}

	o := verifierOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	for _, alg := range algorithms {
		m := gojwt.GetSigningMethod(alg)
		if m == nil || alg == gojwt.SigningMethodNone.Alg() {
			return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", alg)
		}
		if !keyFits(m, key) {
			return nil, fmt.Errorf("jwt: key of type %T cannot verify %s", key, alg)
		}
	}

	methods := slices.Clone(algorithms)

	return &Verifier{
		key:     key,
		methods: methods,
		parser: gojwt.NewParser(
			gojwt.WithValidMethods(methods),
			gojwt.WithLeeway(o.leeway),
			gojwt.WithTimeFunc(o.now),
			gojwt.WithJSONNumber(),
		),
	}, nil
}

func keyFits(m gojwt.SigningMethod, key any) bool {
	switch m.(type) {
	case *gojwt.SigningMethodHMAC:
		k, ok := key.([]byte)
		return ok && len(k) > 0
	case *gojwt.SigningMethodRSA, *gojwt.SigningMethodRSAPSS:
		_, ok := key.(*rsa.PublicKey)
		return ok
	case *gojwt.SigningMethodECDSA:
		_, ok := key.(*ecdsa.PublicKey)
		return ok
	case *gojwt.SigningMethodEd25519:
		_, ok := key.(ed25519.PublicKey)
		return ok
	default:
		return false
	}
}

// Verify returns the caller identity carried by raw.
// An empty raw token yields ErrMissing; an expired but correctly signed token
// yields ErrExpired; everything else that fails yields ErrMalformed.
func (v *Verifier) Verify(raw string) (models.CallerID, error) {
	if raw == "" {
		return 0, failure(ReasonMissing, msgMissing)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return 0, failure(ReasonExpired, msgExpired)
		}
		return 0, failure(ReasonMalformed, msgMalformed)
	}
	if !token.Valid {
		return 0, failure(ReasonMalformed, msgMalformed)
	}

	uid, err := callerID(claims.UID)
	if err != nil {
		return 0, failure(ReasonMalformed, msgMalformed)
	}
	return uid, nil
}

func (v *Verifier) keyFunc(t *gojwt.Token) (any, error) {
	if !slices.Contains(v.methods, t.Method.Alg()) {
		return nil, gojwt.ErrTokenUnverifiable
	}
	return v.key, nil
}

// callerID accepts a JSON number or a decimal string holding a positive integer.
func callerID(v any) (models.CallerID, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return 0, errors.New("uid claim missing")
	case json.Number:
		s = t.String()
	case bool:
		return 0, errors.New("uid claim is not an integer")
	default:
		var err error
		if s, err = cast.ToStringE(t); err != nil {
			return 0, err
		}
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("uid claim %q: %w", s, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("uid claim %d is not positive", id)
	}
	return models.CallerID(id), nil
}
