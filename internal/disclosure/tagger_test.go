package disclosure

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pts-radar/internal/types"
)

func date(y int, m int, d int) *civil.Date {
	return &civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func row(code string, d *civil.Date) types.DisclosureRow {
	return types.DisclosureRow{Code: code, DocumentURL: "https://a/" + code, PublishedAt: d, DayTag: types.DayTagNone}
}

func TestTag_RelativeToBatch(t *testing.T) {
	rows := []types.DisclosureRow{
		row("1111", date(2024, 5, 10)),
		row("2222", date(2024, 5, 9)),
		row("3333", date(2024, 5, 8)),
		row("4444", nil),
		row("5555", date(2024, 5, 10)),
	}

	tagged, window := Tag(rows)
	require.Len(t, tagged, 5)

	want := []types.DayTag{
		types.DayTagToday,
		types.DayTagYesterday,
		types.DayTagNone,
		types.DayTagNone,
		types.DayTagToday,
	}
	for i, tag := range want {
		assert.Equal(t, tag, tagged[i].DayTag, "row %d", i)
	}

	require.NotNil(t, window.Today)
	require.NotNil(t, window.Yesterday)
	assert.Equal(t, *date(2024, 5, 10), *window.Today)
	assert.Equal(t, *date(2024, 5, 9), *window.Yesterday)
	assert.Len(t, window.Dates, 3)
}

func TestTag_DoesNotMutateInput(t *testing.T) {
	rows := []types.DisclosureRow{row("1111", date(2024, 5, 10))}
	tagged, _ := Tag(rows)
	assert.Equal(t, types.DayTagNone, rows[0].DayTag)
	assert.Equal(t, types.DayTagToday, tagged[0].DayTag)
}

func TestTag_SingleDate(t *testing.T) {
	tagged, window := Tag([]types.DisclosureRow{
		row("1111", date(2024, 5, 10)),
		row("2222", date(2024, 5, 10)),
	})
	assert.Equal(t, types.DayTagToday, tagged[0].DayTag)
	assert.Equal(t, types.DayTagToday, tagged[1].DayTag)
	assert.NotNil(t, window.Today)
	assert.Nil(t, window.Yesterday)
}

func TestTag_NoDates(t *testing.T) {
	tagged, window := Tag([]types.DisclosureRow{row("1111", nil), row("2222", nil)})
	for _, r := range tagged {
		assert.Equal(t, types.DayTagNone, r.DayTag)
	}
	assert.Nil(t, window.Today)
	assert.Nil(t, window.Yesterday)

	tagged, window = Tag(nil)
	assert.Empty(t, tagged)
	assert.Empty(t, window.Dates)
}

func TestTag_AtMostTwoDistinctDatesTagged(t *testing.T) {
	var rows []types.DisclosureRow
	for d := 1; d <= 10; d++ {
		rows = append(rows, row("1111", date(2024, 4, d)))
	}
	tagged, _ := Tag(rows)

	dates := map[types.DayTag]map[civil.Date]bool{}
	for _, r := range tagged {
		if dates[r.DayTag] == nil {
			dates[r.DayTag] = map[civil.Date]bool{}
		}
		dates[r.DayTag][*r.PublishedAt] = true
	}
	assert.Len(t, dates[types.DayTagToday], 1)
	assert.Len(t, dates[types.DayTagYesterday], 1)
	assert.True(t, dates[types.DayTagToday][*date(2024, 4, 10)])
	assert.True(t, dates[types.DayTagYesterday][*date(2024, 4, 9)])
}

func TestCountByTagAndDate(t *testing.T) {
	tagged, _ := Tag([]types.DisclosureRow{
		row("1111", date(2024, 5, 10)),
		row("2222", date(2024, 5, 9)),
		row("3333", nil),
		row("4444", date(2024, 5, 10)),
	})

	byTag := CountByTag(tagged)
	assert.Equal(t, 2, byTag[types.DayTagToday])
	assert.Equal(t, 1, byTag[types.DayTagYesterday])
	assert.Equal(t, 1, byTag[types.DayTagNone])

	byDate := CountByDate(tagged)
	assert.Equal(t, map[string]int{"2024-05-10": 2, "2024-05-09": 1, "undated": 1}, byDate)
}
