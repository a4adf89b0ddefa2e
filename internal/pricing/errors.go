package pricing

import "errors"

var (
	// ErrInsufficientHistory means a baseline was requested with no history.
	ErrInsufficientHistory = errors.New("pricing: history is empty")

	// ErrInvalidRange means candidate generation bounds are inconsistent.
	ErrInvalidRange = errors.New("pricing: invalid candidate price range")

	// ErrModelUnavailable wraps failures of the demand model interface.
	ErrModelUnavailable = errors.New("pricing: demand model unavailable")
)
