package disclosure

import (
	"context"

	"github.com/jonathan/pts-radar/internal/fetch"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/types"
)

// DefaultFeedURL is the Yanoshin TDnet recent-disclosures endpoint. Its limit
// parameter bounds how far back "recent" reaches.
const DefaultFeedURL = "https://webapi.yanoshin.jp/webapi/tdnet/list/recent.json2?limit=2000"

// Batch is one fetched, loaded and tagged feed payload.
type Batch struct {
	URL    string                `json:"url"`
	Rows   []types.DisclosureRow `json:"-"`
	Stats  LoadStats             `json:"stats"`
	Window Window                `json:"window"`
}

// Client fetches the disclosure feed once per call.
type Client struct {
	fetcher fetch.Fetcher
	url     string
	loader  *Loader
	logger  logger.Logger
}

// NewClient creates a feed client; an empty feedURL uses DefaultFeedURL.
func NewClient(fetcher fetch.Fetcher, feedURL string, loader *Loader, log logger.Logger) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if loader == nil {
		loader = NewLoader(log, nil)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{fetcher: fetcher, url: feedURL, loader: loader, logger: log}
}

// URL returns the feed endpoint.
func (c *Client) URL() string {
	return c.url
}

// FetchRecent fetches the feed, loads it and tags the rows. A transport
// failure is fatal; a malformed payload degrades to an empty batch.
func (c *Client) FetchRecent(ctx context.Context) (*Batch, error) {
	body, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return nil, &FeedError{URL: c.url, Message: "failed to fetch disclosure feed", Cause: err}
	}

	rows, stats := c.loader.Load(body)
	tagged, window := Tag(rows)

	c.logger.Debug("disclosure feed fetched",
		logger.Int("retained", stats.Retained),
		logger.Int("distinct_dates", len(window.Dates)))

	return &Batch{URL: c.url, Rows: tagged, Stats: stats, Window: window}, nil
}
