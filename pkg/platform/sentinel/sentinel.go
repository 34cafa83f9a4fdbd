package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so callers can branch with errors.Is.
//
// - ErrUnavailable: a backend is temporarily refusing work (e.g. open circuit)
// - ErrInvalidInput: a caller passed an argument outside the accepted range
var (
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = errors.New("invalid input")
)
