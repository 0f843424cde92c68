package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/pts-radar/internal/crawling"
	"github.com/jonathan/pts-radar/internal/disclosure"
	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/schemas"
	"github.com/jonathan/pts-radar/internal/types"
)

func sampleResult() *pipeline.Result {
	pct := decimal.RequireFromString("12.3")
	vol := int64(5000)
	closePrice := int64(2800)

	return &pipeline.Result{
		RunID:       uuid.MustParse("0d8a9a5e-3c1e-4f58-9b0a-5d6f0c9a1b2c"),
		StartedAt:   time.Date(2024, 5, 10, 20, 15, 0, 0, time.UTC),
		DurationMS:  1830,
		Params:      types.RunParams{PctThreshold: decimal.NewFromInt(5), VolumeFloor: 1000, MaxPages: 30},
		LastPage:    3,
		CrawledRows: 150,
		Records: []types.CorrelatedRecord{
			{
				EquityRow:       types.EquityRow{Code: "7203", Name: "トヨタ自動車", ChangePct: &pct, ChangePctRaw: "+12.30%", Volume: &vol, ClosePrice: &closePrice, Page: 1},
				DisclosureCount: 2,
				TopDisclosures: []types.DisclosureLink{
					{Title: "🟦 決算短信", URL: "https://example.com/a.pdf?x=1&y=2", DayTag: types.DayTagToday},
					{Title: "🟨 (no title)", URL: "https://example.com/b.pdf", DayTag: types.DayTagYesterday},
				},
			},
			{
				EquityRow:      types.EquityRow{Code: "1301", Name: "極洋", Page: 2},
				TopDisclosures: []types.DisclosureLink{},
			},
		},
		Summary: types.Summary{Total: 2, WithDisclosures: 1, WithoutDisclosures: 1},
		Diagnostics: pipeline.Diagnostics{
			Pages:      []crawling.PageStat{{Page: 1, Rows: 50}},
			StopReason: crawling.StopBelowThreshold,
			Load:       disclosure.LoadStats{Items: 3, Retained: 3},
			DateCounts: map[string]int{"2024-05-10": 3},
			TagCounts:  map[types.DayTag]int{types.DayTagToday: 3},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, WriteJSON(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NoError(t, schemas.ValidateRun(data))
	assert.Contains(t, string(data), "\n  \"run_id\"", "output is indented")
	assert.Contains(t, string(data), "a.pdf?x=1&y=2", "URLs are not HTML-escaped")

	var decoded struct {
		RunID   string `json:"run_id"`
		Records []struct {
			Code           string                 `json:"code"`
			ChangePct      *string                `json:"change_pct"`
			TopDisclosures []types.DisclosureLink `json:"top_disclosures"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "0d8a9a5e-3c1e-4f58-9b0a-5d6f0c9a1b2c", decoded.RunID)
	require.Len(t, decoded.Records, 2)
	require.NotNil(t, decoded.Records[0].ChangePct)
	assert.Equal(t, "12.3", *decoded.Records[0].ChangePct)
	assert.Nil(t, decoded.Records[1].ChangePct)
	assert.Equal(t, types.DayTagToday, decoded.Records[0].TopDisclosures[0].DayTag)
}

func TestWriteJSON_RejectsInvalidRun(t *testing.T) {
	result := sampleResult()
	result.Records[0].Code = "72030"

	path := filepath.Join(t.TempDir(), "run.json")
	err := WriteJSON(path, result)
	require.Error(t, err)

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an invalid run")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteXLSX(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSurges, SheetDisclosures}, f.GetSheetList())

	rows, err := f.GetRows(SheetSurges)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Code", "Name", "Pct", "Volume", "Close", "PTS", "Disclosures",
		"Title 1", "Link 1", "Title 2", "Link 2", "Title 3", "Link 3"}, rows[0])
	assert.Equal(t, "7203", rows[1][0])
	assert.Equal(t, "トヨタ自動車", rows[1][1])
	assert.Equal(t, "12.3", rows[1][2])
	assert.Equal(t, "5000", rows[1][3])
	assert.Equal(t, "2", rows[1][6])
	assert.Equal(t, "🟦 決算短信", rows[1][7])
	assert.Equal(t, "https://example.com/a.pdf?x=1&y=2", rows[1][8])
	assert.Equal(t, "1301", rows[2][0])

	linked, target, err := f.GetCellHyperLink(SheetSurges, "I2")
	require.NoError(t, err)
	assert.True(t, linked)
	assert.Equal(t, "https://example.com/a.pdf?x=1&y=2", target)

	details, err := f.GetRows(SheetDisclosures)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, []string{"7203", "トヨタ自動車", "1", "today", "🟦 決算短信", "https://example.com/a.pdf?x=1&y=2"}, details[1])
	assert.Equal(t, "yesterday", details[2][3])
}

func TestWrite_ByExtension(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(filepath.Join(dir, "run.JSON"), sampleResult()))
	require.NoError(t, Write(filepath.Join(dir, "run.xlsx"), sampleResult()))

	err := Write(filepath.Join(dir, "run.csv"), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestTimestampedPath(t *testing.T) {
	ts := time.Date(2024, 5, 10, 20, 15, 3, 0, time.UTC)
	path := TimestampedPath("out", FormatXLSX, ts)
	assert.Equal(t, filepath.Join("out", "pts-radar-20240510-201503.xlsx"), path)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))
}
