package books

import (
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

// put replaces every field of the record; omitted optional fields are cleared.
func put(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			apperr.BadRequest(w, r, "invalid id")
			return
		}

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

		updated, err := d.svc.Update(r.Context(), id, b)
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}
		httpx.OK(w, toResp(updated))
	}
}
