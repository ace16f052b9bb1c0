package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError reports one field that failed validation: a missing
// required field or a value rejected by its descriptor's type.
type FieldError struct {
	Field  string
	Reason string
	Value  any // nil when the field was absent
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Field, e.Reason, e.Value)
}

// ValidationError carries every field failure from a single Validate
// call, so callers report the full set instead of the first hit.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Fields))
	for _, fe := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Unwrap exposes the per-field failures to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, fe := range e.Fields {
		errs[i] = fe
	}
	return errs
}

// ValidationErrors extracts the per-field failures from err, walking
// wrapped errors. It returns nil when err carries none.
func ValidationErrors(err error) []*FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
