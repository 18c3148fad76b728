package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any external call when a
	// required request field is empty or absent.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when no conversation exists for the
	// requested identifier, or when its transcript has no turns.
	ErrNotFound = errors.New("conversation not found")

	// ErrStoreUnavailable is returned when the persistence layer is
	// misconfigured or unreachable and the caller has no degraded mode.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// MalformedAnalysisError is returned when the extraction reply cannot be
// parsed as a customer record by any strategy.  Raw carries the full
// reply text for operator diagnosis.
type MalformedAnalysisError struct {
	Raw string
}

func (e *MalformedAnalysisError) Error() string {
	return fmt.Sprintf("analysis reply is not valid JSON: %q", e.Raw)
}
