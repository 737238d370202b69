package rfid

import "errors"

var (
	// ErrConfig is returned when construction-time parameters are invalid:
	// non-positive antenna, particle or iteration counts, a floor plan with
	// no free cells, or out-of-range model constants.
	ErrConfig = errors.New("invalid configuration")

	// ErrPrecondition is returned when a placement handed to an evaluator
	// contains a coordinate that is out of bounds or not a free cell.
	ErrPrecondition = errors.New("placement precondition violated")
)
