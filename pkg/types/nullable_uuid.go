package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// NullableUUID tracks whether a UUID field was explicitly present in JSON, so
// an update can tell "leave unchanged" (absent) from "clear" (null).
type NullableUUID struct {
	Valid bool
	Value *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	n.Valid = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}

	var parsed uuid.UUID
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// Apply returns the new value when the field was present, otherwise current.
func (n NullableUUID) Apply(current *uuid.UUID) *uuid.UUID {
	if !n.Valid {
		return current
	}
	if n.Value == nil {
		return nil
	}
	copied := *n.Value
	return &copied
}
