package paths

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroLengthSegment reports degenerate geometry: a segment whose
	// endpoints coincide, or a zero vector that can't be normalized.
	ErrZeroLengthSegment = errors.New("zero length segment")

	// ErrInvalidDPI is returned by MMToUnits for a dpi that isn't positive.
	ErrInvalidDPI = errors.New("dpi must be greater than 0")

	// ErrNegativeLength is returned by MMToUnits for a negative length.
	ErrNegativeLength = errors.New("length must be non-negative")
)

// A SegmentError records an error about a particular segment.
type SegmentError struct {
	ID  SegmentID
	Err error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %s: %v", e.ID, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
