package models

import (
	"bytes"
	"encoding/json"
)

// Ref is a reference the backend sends either as a bare identifier or as the
// populated document.
type Ref[T any] struct {
	id       string
	resolved *T
}

// identified is implemented by documents that know their own identifier.
type identified interface {
	Identifier() string
}

func RefTo[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

func Resolved[T any](v T) Ref[T] {
	return Ref[T]{resolved: &v}
}

// Resolve returns the populated document, if the backend sent one.
func (r Ref[T]) Resolve() (T, bool) {
	if r.resolved == nil {
		var zero T
		return zero, false
	}
	return *r.resolved, true
}

// ID returns the referenced identifier for both forms.
func (r Ref[T]) ID() string {
	if r.resolved != nil {
		if doc, ok := any(*r.resolved).(identified); ok {
			return doc.Identifier()
		}
	}
	return r.id
}

func (r Ref[T]) IsZero() bool {
	return r.resolved == nil && r.id == ""
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	switch {
	case r.resolved != nil:
		return json.Marshal(r.resolved)
	case r.id != "":
		return json.Marshal(r.id)
	default:
		return []byte("null"), nil
	}
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	*r = Ref[T]{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &r.id)
	}
	var doc T
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return err
	}
	r.resolved = &doc
	return nil
}
