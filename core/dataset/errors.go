package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema matches every SchemaError via errors.Is.
	ErrSchema = errors.New("schema error")
	// ErrTypeCoercion matches every TypeCoercionError via errors.Is.
	ErrTypeCoercion = errors.New("type coercion error")
)

// SchemaError reports a structural problem with a dataset, such as two columns
// collapsing onto the same normalized name.
type SchemaError struct {
	Stage   string
	Dataset string
	Columns []string
	Reason  string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Stage != "" {
		b.WriteString(" during " + e.Stage)
	}
	if e.Dataset != "" {
		b.WriteString(fmt.Sprintf(" in dataset %q", e.Dataset))
	}
	if len(e.Columns) > 0 {
		b.WriteString(fmt.Sprintf(" (columns %s)", strings.Join(quoteAll(e.Columns), ", ")))
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

// Is makes errors.Is(err, ErrSchema) true.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// TypeCoercionError reports a value that cannot be represented as a Value.
type TypeCoercionError struct {
	GoType string
	Column string
	Err    error
}

func (e *TypeCoercionError) Error() string {
	msg := "cannot coerce value of type " + e.GoType
	if e.Column != "" {
		msg += fmt.Sprintf(" in column %q", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrTypeCoercion) true.
func (e *TypeCoercionError) Is(target error) bool { return target == ErrTypeCoercion }

func (e *TypeCoercionError) Unwrap() error { return e.Err }

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
