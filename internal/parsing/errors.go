package parsing

import (
	"errors"
	"fmt"
)

// ErrAbsent reports that the text carries no value at all (no digits, no date pattern).
var ErrAbsent = errors.New("value absent")

// NumberError represents text that contains digits but cannot be read as a number
type NumberError struct {
	Input string
	Cause error
}

func (e *NumberError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid number %q: %v", e.Input, e.Cause)
	}
	return fmt.Sprintf("invalid number %q", e.Input)
}

func (e *NumberError) Unwrap() error {
	return e.Cause
}

// DateError represents a date pattern that does not form a valid calendar date
type DateError struct {
	Input   string
	Matched string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q in %q", e.Matched, e.Input)
}
