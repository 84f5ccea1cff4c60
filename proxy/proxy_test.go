package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreflight(t *testing.T) {
	backendHit := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
	}))
	defer backend.Close()

	h, err := New(backend.URL, "", zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/posts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, PATCH, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization, X-Requested-With", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.False(t, backendHit)
}

func TestForward(t *testing.T) {
	var (
		gotOrigin, gotAuth, gotHost, gotBody, gotPath, gotQuery string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("Origin")
		gotAuth = r.Header.Get("Authorization")
		gotHost = r.Host
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.Header().Set("Access-Control-Allow-Origin", "https://login-baa7f.web.app")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"post_id":1}`))
	}))
	defer backend.Close()

	h, err := New(backend.URL, DefaultOrigin, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/posts?page=2", strings.NewReader(`{"title":"Eggs"}`))
	req.Header.Set("Origin", "http://localhost:3001")
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"post_id":1}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))

	assert.Equal(t, DefaultOrigin, gotOrigin)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, strings.TrimPrefix(backend.URL, "http://"), gotHost)
	assert.Equal(t, "/api/posts", gotPath)
	assert.Equal(t, "page=2", gotQuery)
	assert.Equal(t, `{"title":"Eggs"}`, gotBody)
}

func TestUpstreamFailure(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	h, err := New(url, "", zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, UpstreamErrorMessage, body["error"])
}

func TestNewInvalidBackend(t *testing.T) {
	for _, backend := range []string{"", "not a url", "://x"} {
		_, err := New(backend, "", zerolog.Nop())
		assert.Error(t, err, backend)
	}
}
