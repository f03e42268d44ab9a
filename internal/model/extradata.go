package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtraData is the open, source-specific attribute bag attached to a
// record (sponsors, committees, citation, administration, ...). Keys are
// source-namespaced by convention only; nothing beyond structural
// validity is enforced. Stored as a JSONB column.
type ExtraData map[string]any

// Value implements driver.Valuer for JSONB persistence.
func (e ExtraData) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extra_data: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for JSONB persistence.
func (e *ExtraData) Scan(src any) error {
	if src == nil {
		*e = nil
		return nil
	}

	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ExtraData", src)
	}

	if err := json.Unmarshal(b, e); err != nil {
		return fmt.Errorf("failed to unmarshal extra_data: %w", err)
	}
	return nil
}
