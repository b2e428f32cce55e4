package router_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/5w1tchy/inventory-api/internal/api/middlewares"
	"github.com/5w1tchy/inventory-api/internal/api/router"
	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/store/memory"
)

var quiet = slog.New(slog.DiscardHandler)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := inventory.NewService(memory.New(), inventory.WithLogger(quiet))
	h := mw.Apply(
		router.Router(svc, quiet),
		mw.RequestID,
		mw.Recovery(quiet),
		mw.Cors([]string{"http://localhost:5173"}, quiet),
		mw.ResponseTime(quiet),
		mw.SecurityHeaders,
		mw.NewLocalLimiter(1000, 1000, nil, quiet).Middleware,
		mw.BodySizeLimit(1<<20),
		mw.Compression,
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type reply struct {
	Status int
	Header http.Header
	Body   map[string]any
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) reply {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := reply{Status: res.StatusCode, Header: res.Header}
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if strings.Contains(res.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

func data(t *testing.T, r reply) map[string]any {
	t.Helper()
	d, ok := r.Body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", r.Body)
	return d
}

func TestScenario_CreateGetPatchDelete(t *testing.T) {
	srv := newServer(t)

	created := call(t, srv, http.MethodPost, "/books", `{"title":"Dune","author":"Herbert","stock":5,"price":10.00}`)
	require.Equal(t, http.StatusCreated, created.Status)
	assert.Equal(t, "/books/1", created.Header.Get("Location"))
	assert.EqualValues(t, 1, data(t, created)["id"])

	got := call(t, srv, http.MethodGet, "/books/1", "")
	require.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, "Dune", data(t, got)["title"])

	missing := call(t, srv, http.MethodPatch, "/books/1/stock", `{}`)
	require.Equal(t, http.StatusBadRequest, missing.Status)
	assert.Equal(t, "missing stock field", missing.Body["detail"])
	assert.Equal(t, "application/problem+json", missing.Header.Get("Content-Type"))

	patched := call(t, srv, http.MethodPatch, "/books/1/stock", `{"stock":20}`)
	require.Equal(t, http.StatusOK, patched.Status)
	assert.EqualValues(t, 20, data(t, patched)["stock"])
	assert.Equal(t, "Dune", data(t, patched)["title"])

	deleted := call(t, srv, http.MethodDelete, "/books/1", "")
	require.Equal(t, http.StatusOK, deleted.Status)

	gone := call(t, srv, http.MethodGet, "/books/1", "")
	assert.Equal(t, http.StatusNotFound, gone.Status)
	assert.Equal(t, "book not found", gone.Body["detail"])
}

func TestRouter_Ambient(t *testing.T) {
	srv := newServer(t)

	health := call(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, health.Status)
	assert.Equal(t, "ok", health.Body["status"])

	r := call(t, srv, http.MethodGet, "/books", "")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, r.Header.Get("X-Response-Time"))
	assert.Equal(t, "nosniff", r.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "token-bucket", r.Header.Get("X-RateLimit-Policy"))
	assert.EqualValues(t, 0, r.Body["size"])

	wrong := call(t, srv, http.MethodPost, "/books/1", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, wrong.Status)
}

func TestRouter_OpenAPIDocument(t *testing.T) {
	srv := newServer(t)

	doc := call(t, srv, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, doc.Status)
	assert.Equal(t, "application/json", doc.Header.Get("Content-Type"))
	assert.Equal(t, "3.0.3", doc.Body["openapi"])

	info, ok := doc.Body["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Library Inventory API - Books", info["title"])
	assert.Equal(t, "1.0", info["version"])

	paths, ok := doc.Body["paths"].(map[string]any)
	require.True(t, ok)
	routes := map[string][]string{
		"/books":            {"get", "post"},
		"/books/{id}":       {"get", "put", "delete"},
		"/books/{id}/stock": {"patch"},
	}
	for path, methods := range routes {
		item, ok := paths[path].(map[string]any)
		require.True(t, ok, path)
		for _, m := range methods {
			assert.Contains(t, item, m, path)
		}
	}

	// documented routes and served routes agree
	for path, methods := range routes {
		for _, m := range methods {
			p := strings.ReplaceAll(path, "{id}", "1")
			r := call(t, srv, strings.ToUpper(m), p, `{"stock":1}`)
			assert.NotEqual(t, http.StatusMethodNotAllowed, r.Status, m+" "+p)
			assert.False(t, r.Status == http.StatusNotFound && r.Body == nil, "unrouted: "+m+" "+p)
		}
	}
}
