package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingUserID     = errors.New("user_id is required")
	ErrMissingAction     = errors.New("action is required")
	ErrMissingResource   = errors.New("resource is required")
	ErrMissingResourceID = errors.New("resource_id is required")
	ErrNegativeDayOffset = errors.New("day offsets must be non-negative")
	ErrInvalidEmail      = errors.New("contact_email is not a valid address")
)

// Sentinel errors for entity lookups.
var (
	ErrSettingsNotFound = errors.New("reminder settings not found")
	ErrEntryNotFound    = errors.New("reminder log entry not found")
)

// rangeError reports a numeric field outside its allowed bounds.
type rangeError struct {
	field  string
	lo, hi int
}

func (e rangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d", e.field, e.lo, e.hi)
}

// ErrOutOfRange returns an error indicating a field is outside its allowed range.
func ErrOutOfRange(field string, lo, hi int) error {
	return rangeError{field: field, lo: lo, hi: hi}
}

// IsValidation reports whether err is (or wraps) an input validation error,
// as opposed to a storage or lookup failure.
func IsValidation(err error) bool {
	var re rangeError
	if errors.As(err, &re) {
		return true
	}

	for _, sentinel := range []error{
		ErrMissingUserID,
		ErrMissingAction,
		ErrMissingResource,
		ErrMissingResourceID,
		ErrNegativeDayOffset,
		ErrInvalidEmail,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
