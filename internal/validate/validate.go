package validate

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/5w1tchy/inventory-api/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalid = errors.New("invalid")

const (
	TitleMin       = 3
	TitleMax       = 150
	AuthorMin      = 3
	AuthorMax      = 120
	PublisherMax   = 120
	CategoryMax    = 60
	LanguageLen    = 2
	DescriptionMax = 500
	PriceIntDigits = 10
	PriceFracDigit = 2
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// Errors is a list of field failures; it is itself an error.
type Errors []FieldError

func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (es Errors) Is(target error) bool { return target == ErrInvalid }

// Clean trims and NFC-normalizes s.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func Length(s string) int { return utf8.RuneCountInString(s) }

// Sanitize returns b with its text fields cleaned. Case is kept as sent.
func Sanitize(b models.Book) models.Book {
	b.Title = Clean(b.Title)
	b.Author = Clean(b.Author)
	b.Publisher = Clean(b.Publisher)
	b.Category = Clean(b.Category)
	b.Language = Clean(b.Language)
	b.Description = Clean(b.Description)
	return b
}

// Book checks every field of the record contract. Call Sanitize first.
func Book(b models.Book, now time.Time) Errors {
	var errs Errors
	add := func(field, code, msg string) {
		errs = append(errs, FieldError{Field: field, Code: code, Message: msg})
	}

	required := func(field, v string, min, max int) {
		switch n := Length(v); {
		case n == 0:
			add(field, "required", field+" is required")
		case n < min:
			add(field, "too_short", field+" must be at least "+strconv.Itoa(min)+" characters")
		case n > max:
			add(field, "too_long", field+" must be at most "+strconv.Itoa(max)+" characters")
		}
	}
	optional := func(field, v string, max int) {
		if Length(v) > max {
			add(field, "too_long", field+" must be at most "+strconv.Itoa(max)+" characters")
		}
	}

	required("title", b.Title, TitleMin, TitleMax)
	required("author", b.Author, AuthorMin, AuthorMax)
	optional("publisher", b.Publisher, PublisherMax)
	optional("category", b.Category, CategoryMax)
	optional("description", b.Description, DescriptionMax)

	if !b.PublicationDate.IsZero() && b.PublicationDate.After(now) {
		add("publicationDate", "future", "publicationDate must not be in the future")
	}
	if b.Stock < 0 {
		add("stock", "min", "stock must not be negative")
	}
	if b.Price.IsNegative() {
		add("price", "min", "price must not be negative")
	} else if b.Price.IntegerDigits() > PriceIntDigits || b.Price.FractionDigits() > PriceFracDigit {
		add("price", "digits", "price allows at most 10 integer digits and 2 fraction digits")
	}
	if b.Language != "" {
		if err := Language(b.Language); err != nil {
			add("language", "invalid", err.Error())
		}
	}
	return errs
}

// Language accepts a two-letter ISO 639-1 code in any case.
func Language(code string) error {
	if Length(code) != LanguageLen {
		return errors.New("language must be a 2-letter ISO 639-1 code")
	}
	if _, err := language.ParseBase(strings.ToLower(code)); err != nil {
		return errors.New("language must be a 2-letter ISO 639-1 code")
	}
	return nil
}
