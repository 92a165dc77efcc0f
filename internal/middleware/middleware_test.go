package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/token"
)

const secret = "secret"

type fakeOwners map[uuid.UUID]uuid.UUID

func (f fakeOwners) FindShopOwner(c context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	owner, ok := f[shopID]
	if !ok {
		return uuid.Nil, fmt.Errorf("shop %w", inErrors.ErrNotFound)
	}
	return owner, nil
}

type brokenOwners struct{}

func (brokenOwners) FindShopOwner(c context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, errors.New("connection refused")
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	signed, err := token.Sign(secret, userID, time.Now())
	require.NoError(t, err)
	return inHttp.VALUE_BEARER_PREFIX + signed
}

func serve(router http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		r.Header.Set(inHttp.KEY_HEADER_AUTHORIZATION, authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestAuth(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Auth(secret))
	router.HandleFunc("/private", ok)
	userID := uuid.New()

	tests := []struct {
		name          string
		authorization string
		statusCode    int
	}{
		{name: "missing header", statusCode: http.StatusUnauthorized},
		{name: "no bearer prefix", authorization: "Basic abc", statusCode: http.StatusUnauthorized},
		{name: "invalid token", authorization: inHttp.VALUE_BEARER_PREFIX + "abc", statusCode: http.StatusUnauthorized},
		{name: "valid token", authorization: bearer(t, userID), statusCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/private", tt.authorization)
			assert.Equal(t, tt.statusCode, w.Code)
		})
	}
}

func TestIsOwner(t *testing.T) {
	owner := uuid.New()
	shopID := uuid.New()

	router := mux.NewRouter()
	router.Use(Auth(secret), IsOwner(fakeOwners{shopID: owner}))
	router.HandleFunc("/shops/{shopId}", ok)

	broken := mux.NewRouter()
	broken.Use(Auth(secret), IsOwner(brokenOwners{}))
	broken.HandleFunc("/shops/{shopId}", ok)

	tests := []struct {
		name       string
		router     http.Handler
		target     string
		userID     uuid.UUID
		statusCode int
	}{
		{name: "owner", router: router, target: "/shops/" + shopID.String(), userID: owner, statusCode: http.StatusNoContent},
		{name: "not owner", router: router, target: "/shops/" + shopID.String(), userID: uuid.New(), statusCode: http.StatusForbidden},
		{name: "unknown shop", router: router, target: "/shops/" + uuid.NewString(), userID: owner, statusCode: http.StatusNotFound},
		{name: "invalid shop id", router: router, target: "/shops/abc", userID: owner, statusCode: http.StatusBadRequest},
		{name: "lookup failure", router: broken, target: "/shops/" + shopID.String(), userID: owner, statusCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.router, http.MethodGet, tt.target, bearer(t, tt.userID))
			assert.Equal(t, tt.statusCode, w.Code)
		})
	}
}

func serveWithLogger(router http.Handler, target, authorization string, out *bytes.Buffer) int {
	logger := zerolog.New(out)
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r = r.WithContext(logger.WithContext(r.Context()))
	r.Header.Set(inHttp.KEY_HEADER_AUTHORIZATION, authorization)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w.Code
}

func handledLine(t *testing.T, out *bytes.Buffer) string {
	t.Helper()
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, `"message":"handled"`) {
			return line
		}
	}
	t.Fatalf("handler did not log, got %s", out.String())
	return ""
}

func logFromHandler(w http.ResponseWriter, r *http.Request) {
	zerolog.Ctx(r.Context()).Info().Msg("handled")
	w.WriteHeader(http.StatusNoContent)
}

func TestIsOwnerPassesContext(t *testing.T) {
	owner := uuid.New()
	shopID := uuid.New()
	router := mux.NewRouter()
	router.Use(Auth(secret), IsOwner(fakeOwners{shopID: owner}))
	router.HandleFunc("/shops/{shopId}", logFromHandler)
	var out bytes.Buffer

	code := serveWithLogger(router, "/shops/"+shopID.String(), bearer(t, owner), &out)

	require.Equal(t, http.StatusNoContent, code)
	assert.Contains(t, handledLine(t, &out), `"tag":"middleware IsOwner"`)
}

func TestIsSelfPassesContext(t *testing.T) {
	userID := uuid.New()
	router := mux.NewRouter()
	router.Use(Auth(secret), IsSelf)
	router.HandleFunc("/users/{userId}", logFromHandler)
	var out bytes.Buffer

	code := serveWithLogger(router, "/users/"+userID.String(), bearer(t, userID), &out)

	require.Equal(t, http.StatusNoContent, code)
	assert.Contains(t, handledLine(t, &out), `"tag":"middleware IsSelf"`)
}

func TestIsSelf(t *testing.T) {
	userID := uuid.New()

	router := mux.NewRouter()
	router.Use(Auth(secret), IsSelf)
	router.HandleFunc("/users/{userId}", ok)

	w := serve(router, http.MethodGet, "/users/"+userID.String(), bearer(t, userID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, http.MethodGet, "/users/"+uuid.NewString(), bearer(t, userID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodGet, "/users/abc", bearer(t, userID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecoverPanic(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RecoverPanic)
	router.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := serve(router, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, inHttp.STATUS_FAILED, body["status"])
}

func TestLogging(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Logging)
	router.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hunter2", body["password"])
		assert.Equal(t, "request-1", log.RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"email":"a@b.c","password":"hunter2"}`))
	r.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	r.Header.Set(inHttp.KEY_HEADER_REQUEST_ID, "request-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "request-1", w.Header().Get(inHttp.KEY_HEADER_REQUEST_ID))
}
