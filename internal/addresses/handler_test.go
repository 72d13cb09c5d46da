package addresses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-service/internal/models"
	"profile-service/internal/respond"
	"profile-service/internal/storage/memory"
	"profile-service/pkg/jwt"
	"profile-service/pkg/logger"
	"profile-service/pkg/validation"
)

type stubVerifier map[string]models.CallerID

func (s stubVerifier) Verify(raw string) (models.CallerID, error) {
	if raw == "" {
		return 0, jwt.ErrMissing
	}
	uid, ok := s[raw]
	if !ok {
		return 0, jwt.ErrMalformed
	}
	return uid, nil
}

func newRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	st := newStore(t)
	h := NewHandler(NewService(st, logger.NewNop()), respond.New(logger.NewNop(), nil), validation.New())

	r := chi.NewRouter()
	r.Use(jwt.Authenticate(stubVerifier{"alice": 7, "bob": 8, "dave": 9}, nil))
	r.Mount("/addresses", h.Routes())
	r.Mount("/drivers/address", h.DriverRoutes())
	return r, st
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestHandlerRequiresAuth(t *testing.T) {
	h, _ := newRouter(t)

	code, _ := do(t, h, http.MethodGet, "/addresses", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, h, http.MethodGet, "/addresses", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHandlerUserFlow(t *testing.T) {
	h, st := newRouter(t)
	seedProfile(t, st, 7, models.KindUser, true)

	code, body := do(t, h, http.MethodPost, "/addresses", "alice", `{"city":1,"address":"Enghelab Sq. 4"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, msgAdded, body["msg"])
	id := int64(body["id"].(float64))

	code, body = do(t, h, http.MethodGet, "/addresses", "alice", "")
	require.Equal(t, http.StatusOK, code)
	list := body["addresses"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Tehran", list[0].(map[string]any)["city"])

	path := "/addresses/" + jsonInt(id)
	code, body = do(t, h, http.MethodPut, path, "bob", `{"address":"mine now"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, msgEditMissing, body["msg"])

	code, body = do(t, h, http.MethodPut, path, "alice", `{"address":"Enghelab Sq. 5"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgEdited, body["msg"])

	code, body = do(t, h, http.MethodDelete, path, "bob", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, msgDeleteMissing, body["msg"])

	code, _ = do(t, h, http.MethodDelete, path, "alice", "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodDelete, path, "alice", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, msgDeleteMissing, body["msg"])
}

func TestHandlerRejectsBadBodies(t *testing.T) {
	h, st := newRouter(t)
	seedProfile(t, st, 7, models.KindUser, true)

	code, body := do(t, h, http.MethodPost, "/addresses", "alice", `{"city":1,"address":"x","owner":8}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid data", body["msg"])

	code, body = do(t, h, http.MethodPost, "/addresses", "alice", `{"address":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "city", body["field"])

	code, body = do(t, h, http.MethodPost, "/addresses", "alice", `{"city":77,"address":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "city", body["field"])

	code, _ = do(t, h, http.MethodPut, "/addresses/abc", "alice", `{}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, h, http.MethodPost, "/addresses", "alice", `{"city":1,"address":"x","postal_code":"1234567890"}`)
	require.Equal(t, http.StatusCreated, code)
	id := int64(body["id"].(float64))
	path := "/addresses/" + jsonInt(id)

	// edits follow the same postal code rule as creation
	code, body = do(t, h, http.MethodPut, path, "alice", `{"postal_code":"12#$%!"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "postal_code", body["field"])

	got, err := st.Addresses().ByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got.PostalCode)

	code, _ = do(t, h, http.MethodPut, path, "alice", `{"postal_code":""}`)
	require.Equal(t, http.StatusOK, code)
	got, err = st.Addresses().ByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.PostalCode)
}

func TestHandlerNoProfile(t *testing.T) {
	h, _ := newRouter(t)

	code, body := do(t, h, http.MethodPost, "/addresses", "alice", `{"city":1,"address":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, msgNoProfile, body["msg"])
}

func TestHandlerDriverFlow(t *testing.T) {
	h, st := newRouter(t)
	p := seedProfile(t, st, 9, models.KindDriver, true)

	code, body := do(t, h, http.MethodGet, "/drivers/address", "dave", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, msgMissing, body["msg"])

	code, _ = do(t, h, http.MethodPost, "/drivers/address", "dave", `{"city":5,"address":"Naqsh-e Jahan 1"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body = do(t, h, http.MethodPost, "/drivers/address", "dave", `{"city":5,"address":"another"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "owner", body["field"])

	code, body = do(t, h, http.MethodPut, "/drivers/address", "dave", `{"city":6}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, msgEditedPending, body["msg"])

	got, err := st.Profiles().ByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.Confirmed)

	code, body = do(t, h, http.MethodGet, "/drivers/address", "dave", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(6), body["city"])
}

func jsonInt(i int64) string {
	b, _ := json.Marshal(i)
	return string(b)
}
