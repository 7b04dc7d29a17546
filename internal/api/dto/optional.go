package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OptionalID is a JSON id field that distinguishes three states: absent
// (Set is false), explicitly empty (null or "", Valid is false) and a value.
// Numbers and numeric strings are both accepted.
type OptionalID struct {
	Set   bool
	Valid bool
	Value int64
}

// ID returns a pointer to the value, or nil when the field is absent or empty.
func (o OptionalID) ID() *int64 {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// Cleared reports whether the field was sent as null or "".
func (o OptionalID) Cleared() bool {
	return o.Set && !o.Valid
}

// UnmarshalJSON implements json.Unmarshaler. It is also invoked for null.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Valid = false
	o.Value = 0

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("id must be an integer, got %s", data)
	}
	o.Valid = true
	o.Value = v
	return nil
}

// MarshalJSON renders absent or empty as null.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// NewOptionalID returns a set, valid id.
func NewOptionalID(v int64) OptionalID {
	return OptionalID{Set: true, Valid: true, Value: v}
}

// ClearedID returns a set, empty id (null on the wire).
func ClearedID() OptionalID {
	return OptionalID{Set: true}
}
