// Package fetch - browser.go provides headless browser rendering for ranking pages
// that only fill their table client-side.
package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultBrowserWait is how long the page is given to run its scripts after load.
const DefaultBrowserWait = 2 * time.Second

// BrowserFetcher renders pages in headless Chrome and returns the resulting HTML.
// Requires Chrome/Chromium to be installed on the system.
type BrowserFetcher struct {
	Timeout time.Duration
	Wait    time.Duration
	// WaitSelector is awaited before the HTML is captured; empty means "body".
	WaitSelector string
}

// NewBrowserFetcher creates a browser-backed Fetcher with the given timeout.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserFetcher{
		Timeout: timeout,
		Wait:    DefaultBrowserWait,
	}
}

// Fetch implements Fetcher.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.Timeout)
	defer cancel()

	waitSelector := f.WaitSelector
	if waitSelector == "" {
		waitSelector = "body"
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector),
		chromedp.Sleep(f.Wait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{
			URL:     url,
			Message: "browser rendering failed",
			Cause:   err,
		}
	}

	return []byte(html), nil
}
