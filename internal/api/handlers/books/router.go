package books

import (
	"log/slog"
	"net/http"
	"time"
)

type deps struct {
	svc Service
	log *slog.Logger
	now func() time.Time
}

type Option func(*deps)

// WithClock overrides the time used to reject future publication dates.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// Register mounts the book routes on mux.
func Register(mux *http.ServeMux, svc Service, logger *slog.Logger, opts ...Option) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &deps{svc: svc, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}

	mux.Handle("GET /books", list(d))
	mux.Handle("POST /books", create(d))
	mux.Handle("GET /books/{id}", get(d))
	mux.Handle("PUT /books/{id}", put(d))
	mux.Handle("PATCH /books/{id}/stock", patchStock(d))
	mux.Handle("DELETE /books/{id}", del(d))
}
