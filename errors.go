package pairkit

import "errors"

// Sentinel errors for the raster core.
var (
	// ErrInvalidPathData is returned when SVG path data cannot be parsed.
	ErrInvalidPathData = errors.New("pairkit: invalid path data")

	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("pairkit: invalid size")
)
