package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("position out of range")
	// ErrInvalidArgument is returned for nil listeners, trackers and requests.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReplayActive is returned when a replay is started while another is still open.
	ErrReplayActive = errors.New("replay already in progress")
	// ErrReplayClosed is returned when an ended replay guard is used again.
	ErrReplayClosed = errors.New("replay already ended")
)

// RangeKind names the part of a request that failed validation.
type RangeKind int

const (
	RangeLine   RangeKind = iota // line index outside [0, LineCount)
	RangeColumn                  // column outside [0, ColumnCount(line)]
	RangeOrder                   // start after end
	RangeIndex                   // absolute index outside [0, Len]
)

// String returns a short name for the kind.
func (k RangeKind) String() string {
	switch k {
	case RangeLine:
		return "line"
	case RangeColumn:
		return "column"
	case RangeOrder:
		return "order"
	case RangeIndex:
		return "index"
	default:
		return "unknown"
	}
}

// RangeError reports a contract violation in the coordinates passed to the buffer.
// Nothing has been mutated when one is returned.
type RangeError struct {
	Kind  RangeKind
	Line  int
	Col   int
	Index int
	Limit int // the bound that was violated
	// Open marks Limit as exclusive, as for CharAt on the last line.
	Open bool
}

func (e *RangeError) Error() string {
	switch e.Kind {
	case RangeLine:
		return fmt.Sprintf("line %d out of range [0, %d)", e.Line, e.Limit)
	case RangeColumn:
		if e.Open {
			return fmt.Sprintf("column %d out of range [0, %d) on line %d", e.Col, e.Limit, e.Line)
		}
		return fmt.Sprintf("column %d out of range [0, %d] on line %d", e.Col, e.Limit, e.Line)
	case RangeOrder:
		return fmt.Sprintf("range start is after its end (end %d:%d)", e.Line, e.Col)
	case RangeIndex:
		return fmt.Sprintf("index %d out of range [0, %d]", e.Index, e.Limit)
	default:
		return "position out of range"
	}
}

// Unwrap lets errors.Is(err, ErrOutOfRange) match.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
