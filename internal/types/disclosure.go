package types

import "cloud.google.com/go/civil"

// DayTag is the relative recency label of a disclosure within one fetched batch.
type DayTag string

const (
	// DayTagToday marks the newest distinct date in the batch
	DayTagToday DayTag = "today"
	// DayTagYesterday marks the second-newest distinct date in the batch
	DayTagYesterday DayTag = "yesterday"
	// DayTagNone marks every other date, including undated rows
	DayTagNone DayTag = "none"
)

// Rank returns the sort key used when ordering disclosures for display.
func (t DayTag) Rank() int {
	switch t {
	case DayTagToday:
		return 0
	case DayTagYesterday:
		return 1
	default:
		return 9
	}
}

// DisclosureRow is one filed disclosure from the TDnet feed.
type DisclosureRow struct {
	Code         string      `json:"code"`
	CompanyName  string      `json:"company_name,omitempty"`
	Title        string      `json:"title"`
	DocumentURL  string      `json:"document_url"`
	PublishedRaw string      `json:"published_raw,omitempty"`
	PublishedAt  *civil.Date `json:"published_at"`
	DayTag       DayTag      `json:"day_tag"`
}

// DisclosureLink is a display-ready disclosure: decorated title plus document URL.
type DisclosureLink struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	DayTag DayTag `json:"day_tag"`
}
