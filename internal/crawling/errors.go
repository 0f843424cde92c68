// Package crawling fetches the night-session price increase ranking page by page and
// parses each page into typed equity rows.
package crawling

import "fmt"

// CrawlError represents a fatal crawling failure. No partial rows accompany it.
type CrawlError struct {
	Page    int
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	prefix := "crawl error"
	if e.Page > 0 {
		prefix = fmt.Sprintf("crawl error on page %d", e.Page)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}
