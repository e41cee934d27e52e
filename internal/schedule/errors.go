package schedule

import "errors"

// Sentinel errors returned (wrapped) by the scheduling functions.
var (
	ErrInvalidFormat   = errors.New("invalid time format")
	ErrOutOfRange      = errors.New("minutes out of range")
	ErrCrossesMidnight = errors.New("event must start before it ends on the same day")
	ErrInvalidWindow   = errors.New("invalid working window")
	ErrInvalidDuration = errors.New("invalid duration")
)
