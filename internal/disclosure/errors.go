// Package disclosure loads the TDnet disclosure feed into typed rows and tags them by recency.
package disclosure

import "fmt"

// FeedError represents a fatal failure to retrieve the disclosure feed
type FeedError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("disclosure feed error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("disclosure feed error for %s: %s", e.URL, e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Cause
}
