package books

import (
	"log/slog"
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

func create(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookReq
		if err := decode(r, &req, true); err != nil {
			writeDecodeErr(w, r, err)
			return
		}
		b, errs := toBook(req, d.now())
		if errs != nil {
			apperr.BadRequest(w, r, "validation failed", fieldErrors(errs)...)
			return
		}

		created, err := d.svc.Create(r.Context(), b)
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}
		d.log.InfoContext(r.Context(), "book created", slog.Int64("book_id", created.ID))
		httpx.Created(w, bookPath(created.ID), toResp(created))
	}
}
