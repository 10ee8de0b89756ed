package body

import "errors"

// Construction errors. Bodies that fail validation never enter a world.
var (
	// ErrInvalidMass indicates a mass that is not a positive finite number.
	ErrInvalidMass = errors.New("body: mass must be positive and finite")

	// ErrInvalidGeometry indicates a degenerate shape (non-positive radius or
	// extent, too few vertices, or a non-convex outline).
	ErrInvalidGeometry = errors.New("body: invalid geometry")

	// ErrInvalidPose indicates a position or angle that is NaN or infinite.
	ErrInvalidPose = errors.New("body: pose must be finite")
)
