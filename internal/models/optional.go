package models

import (
	"bytes"
	"encoding/json"
)

// Optional keeps the difference between a JSON key that was never sent,
// one sent as null, and one sent with a value. Decode into a struct field
// of this type; UnmarshalJSON only runs when the key is present.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Get returns the value and whether a non-null value was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return &InvalidValueError{Raw: string(data), Err: err}
	}
	o.Value = v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// InvalidValueError is returned when a present Optional cannot hold the
// supplied JSON value (e.g. a string or fraction where an integer is expected).
type InvalidValueError struct {
	Raw string
	Err error
}

func (e *InvalidValueError) Error() string {
	return "invalid value " + e.Raw + ": " + e.Err.Error()
}

func (e *InvalidValueError) Unwrap() error { return e.Err }
