package ie

import (
	"errors"
	"fmt"
)

// ErrTruncatedInput is returned when a frame ends before a field it must carry.
var ErrTruncatedInput = errors.New("truncated input")

// DecodeError describes which field ran past the end of the input.
type DecodeError struct {
	Field string
	Need  int
	Have  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: need %d bytes, have %d: %v", e.Field, e.Need, e.Have, ErrTruncatedInput)
}

func (e *DecodeError) Unwrap() error {
	return ErrTruncatedInput
}

func truncated(field string, need, have int) error {
	return &DecodeError{Field: field, Need: need, Have: have}
}
