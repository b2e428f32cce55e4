package middlewares_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	mw "github.com/5w1tchy/inventory-api/internal/api/middlewares"
)

func readAllHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodySizeLimit_AcceptsSmallBodies(t *testing.T) {
	wrapped := mw.BodySizeLimit(64)(readAllHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBodySizeLimit_RejectsLargeBodies(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			wrapped := mw.BodySizeLimit(1024)(readAllHandler(t))

			req := httptest.NewRequest(method, "/books/1", bytes.NewReader(bytes.Repeat([]byte("a"), 2048)))
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}
}

func TestBodySizeLimit_OnlyAppliesToMutatingMethods(t *testing.T) {
	wrapped := mw.BodySizeLimit(4)(readAllHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/books", strings.NewReader("should not matter"))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBodySizeLimit_DefaultsWhenUnset(t *testing.T) {
	wrapped := mw.BodySizeLimit(0)(readAllHandler(t))

	under := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(bytes.Repeat([]byte("a"), int(mw.DefaultMaxBodySize))))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, under)
	assert.Equal(t, http.StatusOK, rec.Code)

	over := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(bytes.Repeat([]byte("a"), int(mw.DefaultMaxBodySize)+1)))
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, over)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
