package models

import (
	"fmt"
	"net/http"
	"strings"
)

// ValidationError is returned when a save is rejected by the pre-submit
// validators. The user corrects the input and retries; nothing was written.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError wraps a failing ValidationResult as an error.
func NewValidationError(result ValidationResult) *ValidationError {
	return &ValidationError{Violations: result.Violations}
}

// TransportError wraps a failed round trip to the export backend. StatusCode
// is zero when the request never produced a response (timeout, DNS, refused
// connection).
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: backend returned %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsDuplicate reports whether the backend rejected the write as a duplicate.
func (e *TransportError) IsDuplicate() bool { return e.StatusCode == http.StatusConflict }

// IsNotFound reports whether a referenced entity is missing on the backend.
func (e *TransportError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// Transient reports whether a retry is worthwhile: server-side failures and
// requests that never completed.
func (e *TransportError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// PartialWriteError is raised when the second step of a two-step save failed
// after the first step persisted, and the compensating delete of the parent
// also failed. The caller must tell the user the parent exists on the
// backend without its detail rows, which is a different situation from
// "nothing was saved".
type PartialWriteError struct {
	ParentKind string
	ParentID   string
	Err        error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s %s was saved but its detail rows failed and rollback did not succeed: %v",
		e.ParentKind, e.ParentID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
