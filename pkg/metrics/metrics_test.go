package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncAuthFailure("expired")
	m.IncAuthFailure("expired")
	m.IncAuthFailure("malformed")
	m.IncValidationFailure("not_allowed")
	m.IncDowngrade()
	m.IncDecision(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("not_allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfirmationDowngrade))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfirmationDecisions.WithLabelValues("true")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncDowngrade()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "driver_confirmation_downgrades_total 1")
}
