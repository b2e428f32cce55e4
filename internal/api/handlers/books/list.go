package books

import (
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/httpx"
)

func list(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := d.svc.List(r.Context())
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}

		out := make([]bookResp, len(books))
		for i, b := range books {
			out[i] = toResp(b)
		}
		httpx.List(w, out, len(out))
	}
}
