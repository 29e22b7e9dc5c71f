package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Ref is a reference to another record. It renders as the full record when
// the reference was loaded and as the bare id otherwise.
type Ref[T any] struct {
	ID    uuid.UUID
	Value *T
}

// RefTo builds an unpopulated reference.
func RefTo[T any](id uuid.UUID) Ref[T] {
	return Ref[T]{ID: id}
}

// Populated builds a reference carrying the loaded record.
func Populated[T any](id uuid.UUID, value T) Ref[T] {
	return Ref[T]{ID: id, Value: &value}
}

// IsPopulated reports whether the referenced record was loaded.
func (r Ref[T]) IsPopulated() bool {
	return r.Value != nil
}

// MarshalJSON implements json.Marshaler.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value)
	}
	if r.ID == uuid.Nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID.String())
}

// UnmarshalJSON accepts either a bare id string or an object carrying "_id".
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	if trimmed[0] == '"' {
		var id uuid.UUID
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	}

	var probe struct {
		ID uuid.UUID `json:"_id"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return err
	}
	var value T
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*r = Ref[T]{ID: probe.ID, Value: &value}
	return nil
}
