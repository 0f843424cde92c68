package disclosure

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/jonathan/pts-radar/internal/types"
)

// Window is the pair of dates the tagger treats as today and yesterday.
// Either may be nil when the batch holds fewer distinct dates.
type Window struct {
	Today     *civil.Date  `json:"today"`
	Yesterday *civil.Date  `json:"yesterday"`
	Dates     []civil.Date `json:"dates"`
}

// Tag assigns day tags relative to the batch itself: the newest distinct
// publish date is today, the second newest is yesterday, and everything
// else (including undated rows) is none. The wall clock is never consulted
// because the feed may lag real time. The input slice is not modified.
func Tag(rows []types.DisclosureRow) ([]types.DisclosureRow, Window) {
	window := Window{Dates: distinctDatesDesc(rows)}
	if len(window.Dates) > 0 {
		d := window.Dates[0]
		window.Today = &d
	}
	if len(window.Dates) > 1 {
		d := window.Dates[1]
		window.Yesterday = &d
	}

	tagged := make([]types.DisclosureRow, len(rows))
	for i, row := range rows {
		row.DayTag = window.tagFor(row.PublishedAt)
		tagged[i] = row
	}
	return tagged, window
}

func (w Window) tagFor(d *civil.Date) types.DayTag {
	switch {
	case d == nil:
		return types.DayTagNone
	case w.Today != nil && *d == *w.Today:
		return types.DayTagToday
	case w.Yesterday != nil && *d == *w.Yesterday:
		return types.DayTagYesterday
	default:
		return types.DayTagNone
	}
}

func distinctDatesDesc(rows []types.DisclosureRow) []civil.Date {
	seen := make(map[civil.Date]struct{})
	dates := make([]civil.Date, 0)
	for _, row := range rows {
		if row.PublishedAt == nil {
			continue
		}
		if _, ok := seen[*row.PublishedAt]; ok {
			continue
		}
		seen[*row.PublishedAt] = struct{}{}
		dates = append(dates, *row.PublishedAt)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
	return dates
}

// CountByTag returns how many rows carry each day tag.
func CountByTag(rows []types.DisclosureRow) map[types.DayTag]int {
	counts := make(map[types.DayTag]int, 3)
	for _, row := range rows {
		counts[row.DayTag]++
	}
	return counts
}

// CountByDate returns how many rows were published on each date; undated rows are keyed "undated".
func CountByDate(rows []types.DisclosureRow) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		key := "undated"
		if row.PublishedAt != nil {
			key = row.PublishedAt.String()
		}
		counts[key]++
	}
	return counts
}
