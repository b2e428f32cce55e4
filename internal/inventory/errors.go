package inventory

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("book not found")
)

// Error is the typed failure of a service operation. Use errors.Is with
// ErrInvalidInput / ErrNotFound, or errors.As to read the details.
type Error struct {
	Kind  Kind
	ID    int64
	Field string
	Msg   string
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotFound:
		return fmt.Sprintf("book %d not found", e.ID)
	case e.Field != "":
		return e.Field + ": " + e.Msg
	default:
		return e.Msg
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

func notFound(id int64) error {
	return &Error{Kind: KindNotFound, ID: id}
}

func invalid(field, msg string) error {
	return &Error{Kind: KindInvalidInput, Field: field, Msg: msg}
}
