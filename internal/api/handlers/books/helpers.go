package books

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/5w1tchy/inventory-api/internal/api/apperr"
	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
	"github.com/5w1tchy/inventory-api/internal/validate"
)

const basePath = "/books"

var errEmptyBody = errors.New("request body is empty")

// decode reads exactly one JSON value from the body into dst.
func decode(r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// writeDecodeErr answers a body that could not be decoded.
func writeDecodeErr(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		apperr.Write(w, r, apperr.Problem{
			Status: http.StatusRequestEntityTooLarge,
			Title:  "Payload Too Large",
			Detail: fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit),
		})
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		apperr.BadRequest(w, r, "invalid JSON", apperr.FieldError{
			Field:   typeErr.Field,
			Code:    "invalid",
			Message: typeErr.Field + " must be a JSON " + typeErr.Type.String(),
		})
		return
	}
	apperr.BadRequest(w, r, "invalid JSON")
}

// writeServiceErr maps an inventory error to a problem. Anything that is not
// an inventory error is logged and answered as a 500 (or a mapped pg error).
func writeServiceErr(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ierr *inventory.Error
	if errors.As(err, &ierr) {
		switch ierr.Kind {
		case inventory.KindNotFound:
			apperr.NotFound(w, r, "book not found")
			return
		case inventory.KindInvalidInput:
			apperr.BadRequest(w, r, ierr.Error(), apperr.FieldError{
				Field:   ierr.Field,
				Code:    "invalid",
				Message: ierr.Msg,
			})
			return
		}
	}
	logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", r.Header.Get("X-Request-ID")),
		slog.String("error", err.Error()),
	)
	apperr.HandleDBError(w, r, err, "Internal Server Error")
}

func fieldErrors(errs validate.Errors) []apperr.FieldError {
	out := make([]apperr.FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, apperr.FieldError{Field: e.Field, Code: e.Code, Message: e.Message})
	}
	return out
}

// toBook turns a POST/PUT body into a sanitized record, or the list of
// field failures.
func toBook(req bookReq, now time.Time) (models.Book, validate.Errors) {
	var missing validate.Errors
	if req.Stock == nil {
		missing = append(missing, validate.FieldError{Field: "stock", Code: "required", Message: "stock is required"})
	}
	if req.Price == nil {
		missing = append(missing, validate.FieldError{Field: "price", Code: "required", Message: "price is required"})
	}

	b := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		PublicationDate: req.PublicationDate,
		Category:        req.Category,
		Language:        req.Language,
		Description:     req.Description,
		Available:       true,
	}
	if req.Stock != nil {
		b.Stock = *req.Stock
	}
	if req.Price != nil {
		b.Price = *req.Price
	}
	if req.Available != nil {
		b.Available = *req.Available
	}
	b = validate.Sanitize(b)

	errs := append(missing, validate.Book(b, now)...)
	if len(errs) > 0 {
		return models.Book{}, errs
	}
	return b, nil
}

func bookPath(id int64) string { return basePath + "/" + strconv.FormatInt(id, 10) }

func toResp(b models.Book) bookResp {
	self := bookPath(b.ID)
	return bookResp{
		Book: b,
		Links: bookLinks{
			Self:   link{Href: self, Method: http.MethodGet},
			Update: link{Href: self, Method: http.MethodPut},
			Stock:  link{Href: self + "/stock", Method: http.MethodPatch},
			Delete: link{Href: self, Method: http.MethodDelete},
			All:    link{Href: basePath, Method: http.MethodGet},
		},
	}
}
