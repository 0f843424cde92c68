// Package export writes runs to JSON and XLSX files.
package export

import "fmt"

// Error represents a failure to write an export file
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("export error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
