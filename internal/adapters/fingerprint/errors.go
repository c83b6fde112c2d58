package fingerprint

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMAC       = errors.New("invalid MAC address format")
	ErrEmptyMAC         = errors.New("empty MAC address")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrRepositoryClosed = errors.New("repository is closed")
)

// DatabaseError wraps a failed registry operation.
type DatabaseError struct {
	Op  string // e.g. "lookup", "insert"
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("oui registry %s failed: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// ValidationError carries the value that failed validation.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
