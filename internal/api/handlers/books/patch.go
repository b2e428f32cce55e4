package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/api/httpx"
	"github.com/5w1tchy/inventory-api/internal/models"
)

func patchStock(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			apperr.BadRequest(w, r, "invalid id")
			return
		}

		var req stockReq
		if err := decode(r, &req, false); err != nil && !errors.Is(err, errEmptyBody) {
			var invalid *models.InvalidValueError
			if errors.As(err, &invalid) {
				apperr.BadRequest(w, r, "stock must be an integer", apperr.FieldError{
					Field: "stock", Code: "invalid", Message: "stock must be an integer",
				})
				return
			}
			writeDecodeErr(w, r, err)
			return
		}

		if !req.Stock.Present {
			apperr.BadRequest(w, r, "missing stock field", apperr.FieldError{
				Field: "stock", Code: "required", Message: "missing stock field",
			})
			return
		}
		stock, ok := req.Stock.Get()
		if !ok {
			apperr.BadRequest(w, r, "stock must not be null", apperr.FieldError{
				Field: "stock", Code: "required", Message: "stock must not be null",
			})
			return
		}

		updated, err := d.svc.PatchStock(r.Context(), id, stock)
		if err != nil {
			writeServiceErr(w, r, d.log, err)
			return
		}
		httpx.OK(w, toResp(updated))
	}
}
