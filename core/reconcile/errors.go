package reconcile

import (
	"errors"
	"fmt"
)

// ErrKey matches every KeyError via errors.Is.
var ErrKey = errors.New("key error")

// KeyError reports an unusable key specification.
type KeyError struct {
	// Column is the offending key column, if any.
	Column string
	// Side is "a" or "b" when the column is missing from one dataset.
	Side string
	// Dataset is the label of that dataset.
	Dataset string
	Reason  string
}

func (e *KeyError) Error() string {
	msg := "key error"
	if e.Column != "" {
		msg += fmt.Sprintf(" on column %q", e.Column)
	}
	if e.Side != "" {
		msg += fmt.Sprintf(" in dataset %s (%s)", e.Side, e.Dataset)
	}
	return msg + ": " + e.Reason
}

// Is makes errors.Is(err, ErrKey) true.
func (e *KeyError) Is(target error) bool { return target == ErrKey }
