package engine

import "errors"

// Sentinel error kinds surfaced by the engine. Callers match with errors.Is
// and translate to HTTP statuses at the handler layer.
var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidRule  = errors.New("invalid rule")
	ErrInvalidRange = errors.New("invalid range")
)
