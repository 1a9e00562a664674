// Package optional models request fields that can be absent, explicitly
// null, or carry a value. Partial updates rely on the distinction: an
// absent field leaves the stored value untouched while null may clear it.
package optional

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	set   bool
	null  bool
	value T
}

func Of[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// Present reports whether the field appeared in the input at all.
func (f Field[T]) Present() bool {
	return f.set
}

func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Get returns the value when the field is present and not null.
func (f Field[T]) Get() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

func (f Field[T]) Value() T {
	return f.value
}

// Clear makes the field absent.
func (f *Field[T]) Clear() {
	*f = Field[T]{}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
