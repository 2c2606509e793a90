package fit

import "errors"

var (
	// ErrMalformedAdjacency is reported for a shape walk that exceeded
	// its step limit without closing.
	ErrMalformedAdjacency = errors.New("malformed adjacency")

	// ErrDoubleAnchor is the warning for an adjustable segment whose
	// neighbors are both anchored. It is probably a marking mistake;
	// the segment is extended about its midpoint.
	ErrDoubleAnchor = errors.New("both ends anchored")

	// ErrUnknownSegment is returned for a segment id not in the drawing.
	ErrUnknownSegment = errors.New("unknown segment")

	// ErrAdjustable is returned when classifying an adjustable segment.
	ErrAdjustable = errors.New("segment is adjustable")

	// ErrNotAdjustable is returned when marking a curve or a zero
	// length segment.
	ErrNotAdjustable = errors.New("segment can't be adjustable")

	// ErrInvalidMultiplier is returned for a multiplier other than 0, 1 or 2.
	ErrInvalidMultiplier = errors.New("multiplier must be 0, 1 or 2")

	// ErrDisconnected is reported by CheckAdjacency, and as an Apply
	// warning, for a recorded neighbor whose shared endpoint has
	// drifted apart.
	ErrDisconnected = errors.New("neighbors are disconnected")

	// ErrDuplicateSegment is returned by New for repeated segment ids.
	ErrDuplicateSegment = errors.New("duplicate segment id")
)
