package books

import (
	"log/slog"
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

func del(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			apperr.BadRequest(w, r, "invalid id")
			return
		}

		deleted, err := d.svc.Delete(r.Context(), id)
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}
		d.log.InfoContext(r.Context(), "book deleted", slog.Int64("book_id", id))

		// the record is returned without links; it no longer resolves
		httpx.OKMessage(w, "book deleted", deleted)
	}
}
