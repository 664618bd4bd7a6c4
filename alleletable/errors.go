package alleletable

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when the input has no rows to work on. Callers in an
// interactive setting should treat it as an idle state rather than a failure.
var ErrEmpty = errors.New("alleletable: no samples in input")

// ParseError describes a malformed header or row. Line is 1-based and refers
// to the physical line of the input.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Msg    string
}

func (e *ParseError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("line %d, column %q: %s (value %q)", e.Line, e.Column, e.Msg, e.Value)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}

	return e.Msg
}
