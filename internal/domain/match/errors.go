package match

import "errors"

// Sentinel kinds for constraint failures.
var (
	ErrTokenOverlap  = errors.New("token overlap below minimum")
	ErrTimeProximity = errors.New("event times too far apart")
)
