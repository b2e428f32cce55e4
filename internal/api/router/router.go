package router

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/handlers/books"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

//go:embed openapi.json
var openAPIDoc []byte

func Router(svc books.Service, logger *slog.Logger, opts ...books.Option) http.Handler {
	mux := http.NewServeMux()

	// Liveness
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API docs (OpenAPI 3)
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDoc)
	})

	// Books (method-specific + 1.22 patterns)
	books.Register(mux, svc, logger, opts...)

	return mux
}
