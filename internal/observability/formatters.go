// Package observability provides formatted terminal output for runs.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jonathan/pts-radar/internal/correlate"
	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// linkColumns is the number of title/link pairs shown per table row
	linkColumns = 3
	// titleWidth caps the title columns of the records table
	titleWidth = 40
)

// Legend explains the recency glyphs.
const Legend = "🟦=today 🟨=yesterday"

// Printer handles formatted output for runs
type Printer struct {
	out     io.Writer
	numbers *message.Printer
	debug   bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, numbers: message.NewPrinter(language.English)}
}

// WithDebug enables diagnostic output.
func (p *Printer) WithDebug(debug bool) *Printer {
	p.debug = debug
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", padRight(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", padRight(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// padRight cuts or pads s to exactly width display cells. Cut text ends in "~".
func padRight(s string, width int) string {
	if text.StringWidthWithoutEscSequences(s) > width {
		var b strings.Builder
		w := 0
		for _, r := range s {
			rw := text.RuneWidth(r)
			if w+rw > width-1 {
				break
			}
			b.WriteRune(r)
			w += rw
		}
		s = b.String() + "~"
	}
	if pad := width - text.StringWidthWithoutEscSequences(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// FormatPct renders a percentage with two decimals; nil renders empty.
func FormatPct(pct *decimal.Decimal) string {
	if pct == nil {
		return ""
	}
	return pct.StringFixed(2)
}

// FormatCount renders n with thousands separators.
func (p *Printer) FormatCount(n int64) string {
	return p.numbers.Sprintf("%d", n)
}

func (p *Printer) formatVolume(v *int64) string {
	if v == nil {
		return ""
	}
	return p.FormatCount(*v)
}

// PrintLegend prints the recency glyph legend.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintLegend() {
	fmt.Fprintln(p.out, Legend)
}

// PrintRecords prints one table row per record with its first three disclosures.
func (p *Printer) PrintRecords(records []types.CorrelatedRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)

	header := table.Row{"Code", "Name", "Pct", "Volume", "Disclosures"}
	configs := []table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	}
	for i := 1; i <= linkColumns; i++ {
		header = append(header, fmt.Sprintf("Title %d", i), fmt.Sprintf("Link %d", i))
		configs = append(configs, table.ColumnConfig{Number: 5 + 2*i - 1, WidthMax: titleWidth})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i := range records {
		r := &records[i]
		row := table.Row{r.Code, r.Name, FormatPct(r.ChangePct), p.formatVolume(r.Volume), r.DisclosureCount}
		for j := 0; j < linkColumns; j++ {
			if j < len(r.TopDisclosures) {
				row = append(row, r.TopDisclosures[j].Title, r.TopDisclosures[j].URL)
			} else {
				row = append(row, "", "")
			}
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"Total", len(records)})
	t.Render()
}

// PrintDetails lists the attached disclosures of every record that has any.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDetails(records []types.CorrelatedRecord) {
	for _, r := range records {
		if !r.HasDisclosures() {
			continue
		}

		note := ""
		if r.DisclosureCount > correlate.MaxDisclosures {
			note = fmt.Sprintf(" (top %d of %d)", correlate.MaxDisclosures, r.DisclosureCount)
		}
		fmt.Fprintf(p.out, "\n%s %s disclosures%s\n", r.Code, r.Name, note)

		for _, link := range r.TopDisclosures {
			if link.URL == "" {
				fmt.Fprintf(p.out, "  - %s\n", link.Title)
				continue
			}
			fmt.Fprintf(p.out, "  - %s\n    %s\n", link.Title, link.URL)
		}
	}
}

// PrintSummary prints the match counts, how far the crawl went, and the filter that was applied.
func (p *Printer) PrintSummary(result *pipeline.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("With disclosures:    %d\n", result.Summary.WithDisclosures))
	sb.WriteString(fmt.Sprintf("Without disclosures: %d\n", result.Summary.WithoutDisclosures))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Crawled to page %d, extracted %d rows\n", result.LastPage, result.Summary.Total))
	sb.WriteString(fmt.Sprintf("Filter: pct >= %s, volume >= %s",
		result.Params.PctThreshold.String(), p.FormatCount(result.Params.VolumeFloor)))
	if result.Params.FullScan {
		sb.WriteString(" (full scan)")
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintDiagnostics prints crawl and feed diagnostics. It prints nothing unless debug is enabled.
func (p *Printer) PrintDiagnostics(result *pipeline.Result) {
	if !p.debug || result == nil {
		return
	}
	d := result.Diagnostics

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run: %s\n", result.RunID))
	for _, page := range d.Pages {
		maxPct := "None"
		if page.MaxPct != nil {
			maxPct = page.MaxPct.String()
		}
		sb.WriteString(fmt.Sprintf("page %d: %d rows, %d skipped, max pct %s\n", page.Page, page.Rows, page.Skipped, maxPct))
	}
	sb.WriteString(fmt.Sprintf("Stop reason: %s\n", d.StopReason))
	sb.WriteString(fmt.Sprintf("Dropped: %d missing values, %d below filter\n", d.MissingValues, d.BelowFloor))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Feed: %s\n", d.FeedURL))
	sb.WriteString(fmt.Sprintf("Items %d, retained %d, duplicates %d, undated %d\n",
		d.Load.Items, d.Load.Retained, d.Load.Duplicates, d.Load.Undated))
	if d.Load.Repaired {
		sb.WriteString("Payload needed JSON repair\n")
	}

	dates := make([]string, 0, len(d.DateCounts))
	for date := range d.DateCounts {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	for _, date := range dates {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", date, d.DateCounts[date]))
	}

	sb.WriteString(fmt.Sprintf("Today: %s\n", dateOrNone(d.Window.Today)))
	sb.WriteString(fmt.Sprintf("Yesterday: %s\n", dateOrNone(d.Window.Yesterday)))
	sb.WriteString(fmt.Sprintf("Tags: today %d, yesterday %d, none %d",
		d.TagCounts[types.DayTagToday], d.TagCounts[types.DayTagYesterday], d.TagCounts[types.DayTagNone]))

	p.printBox("DIAGNOSTICS", sb.String())
}

// PrintResult prints the legend, table, details, summary and diagnostics of a run.
func (p *Printer) PrintResult(result *pipeline.Result) {
	if result == nil {
		return
	}
	p.PrintLegend()
	p.PrintRecords(result.Records)
	p.PrintDetails(result.Records)
	p.PrintSummary(result)
	p.PrintDiagnostics(result)
}

// PrintProgress prints one run progress event.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.Step, event.Message)
}

func dateOrNone(d *civil.Date) string {
	if d == nil {
		return "None"
	}
	return d.String()
}
