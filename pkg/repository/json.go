package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON adapts a value to a jsonb column for both scanning and binding.
// A NULL column leaves the target at its zero value.
type JSON[T any] struct {
	V *T
}

// JSONOf wraps v for use as a query argument or scan destination.
func JSONOf[T any](v *T) JSON[T] {
	return JSON[T]{V: v}
}

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	if j.V == nil {
		return nil, nil
	}
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (j JSON[T]) Scan(src any) error {
	if j.V == nil {
		return fmt.Errorf("scan json column: nil destination")
	}

	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		*j.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan json column: unsupported type %T", src)
	}

	return json.Unmarshal(data, j.V)
}
