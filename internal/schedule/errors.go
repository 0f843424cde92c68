// Package schedule runs a job on a cron schedule, skipping ticks that arrive
// while the previous run is still going.
package schedule

import "fmt"

// Error represents an unusable schedule expression
type Error struct {
	Expr    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schedule %q: %s: %v", e.Expr, e.Message, e.Cause)
	}
	return fmt.Sprintf("schedule %q: %s", e.Expr, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
