package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAdapter  = errors.New("unknown adapter")
	ErrDuplicateName   = errors.New("duplicate adapter name")
	ErrNoAdapters      = errors.New("no adapters configured")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrSchemaMismatch  = errors.New("response does not match schema")
	ErrEmptyResponse   = errors.New("model returned no content")
	ErrMissingImage    = errors.New("image part has no path")
)

// SchemaError reports why a response failed schema validation.
type SchemaError struct {
	Schema   string
	Problems []string
	Err      error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrSchemaMismatch, e.Schema)
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
