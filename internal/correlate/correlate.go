// Package correlate joins surging equities with the disclosures filed under the same code.
package correlate

import (
	"sort"

	"github.com/jonathan/pts-radar/internal/parsing"
	"github.com/jonathan/pts-radar/internal/types"
)

// MaxDisclosures is the number of disclosures attached to each record.
const MaxDisclosures = 5

// NoTitle replaces an empty disclosure title.
const NoTitle = "(no title)"

// Title prefixes by day tag.
const (
	TodayPrefix     = "🟦 "
	YesterdayPrefix = "🟨 "
)

// Correlate emits one record per equity, in input order. Each record carries
// the full match count and up to MaxDisclosures decorated links ordered by
// recency rank, ties kept in feed order. Equities are never filtered here.
func Correlate(equities []types.EquityRow, disclosures []types.DisclosureRow) []types.CorrelatedRecord {
	index := indexByCode(disclosures)

	records := make([]types.CorrelatedRecord, 0, len(equities))
	for _, eq := range equities {
		matches := index[parsing.CanonicalCode(eq.Code)]

		top := make([]types.DisclosureLink, 0, min(len(matches), MaxDisclosures))
		for i := 0; i < len(matches) && i < MaxDisclosures; i++ {
			top = append(top, Decorate(matches[i]))
		}

		records = append(records, types.CorrelatedRecord{
			EquityRow:       eq,
			DisclosureCount: len(matches),
			TopDisclosures:  top,
		})
	}
	return records
}

// indexByCode groups disclosures by canonical code, each list ranked by recency.
func indexByCode(disclosures []types.DisclosureRow) map[string][]types.DisclosureRow {
	index := make(map[string][]types.DisclosureRow)
	for _, d := range disclosures {
		code := parsing.CanonicalCode(d.Code)
		index[code] = append(index[code], d)
	}
	for _, list := range index {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].DayTag.Rank() < list[j].DayTag.Rank()
		})
	}
	return index
}

// Decorate turns a disclosure into a display link with its recency glyph.
func Decorate(d types.DisclosureRow) types.DisclosureLink {
	title := d.Title
	if title == "" {
		title = NoTitle
	}
	switch d.DayTag {
	case types.DayTagToday:
		title = TodayPrefix + title
	case types.DayTagYesterday:
		title = YesterdayPrefix + title
	}
	return types.DisclosureLink{Title: title, URL: d.DocumentURL, DayTag: d.DayTag}
}

// Summarize counts records with and without matching disclosures.
func Summarize(records []types.CorrelatedRecord) types.Summary {
	s := types.Summary{Total: len(records)}
	for _, r := range records {
		if r.HasDisclosures() {
			s.WithDisclosures++
		}
	}
	s.WithoutDisclosures = s.Total - s.WithDisclosures
	return s
}
