package books

import (
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

func get(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			apperr.BadRequest(w, r, "invalid id")
			return
		}

		b, err := d.svc.Get(r.Context(), id)
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}
		httpx.OK(w, toResp(b))
	}
}
