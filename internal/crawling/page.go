package crawling

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/pts-radar/internal/parsing"
	"github.com/jonathan/pts-radar/internal/types"
)

// TableSelector locates the ranking table on the page.
const TableSelector = "div.gray-sticky-table table"

// minDataCells is the number of td cells a ranking row must carry:
// close price, PTS price, change percent, volume.
const minDataCells = 4

var codePattern = regexp.MustCompile(`\d{4}`)

// Page is the parse result of one ranking page.
type Page struct {
	Rows       []types.EquityRow
	TableFound bool
	// SkippedCells counts rows without a header cell or with too few data cells
	SkippedCells int
	// SkippedCode counts rows whose header carries no 4-digit code
	SkippedCode int
}

// Skipped returns the total number of skipped table rows.
func (p *Page) Skipped() int {
	return p.SkippedCells + p.SkippedCode
}

// ParsePage converts one ranking page into equity rows. It never fails:
// markup without the expected table or body yields zero rows, and rows
// that do not fit the expected shape are skipped.
func ParsePage(htmlContent string) *Page {
	page := &Page{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return page
	}

	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return page
	}
	// The HTML5 parser inserts an implied tbody, so only the raw markup
	// tells whether the table carries a body.
	if !hasBodyTag(htmlContent) {
		return page
	}
	tbody := table.Find("tbody").First()
	page.TableFound = true

	tbody.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		th := tr.Find("th").First()
		tds := tr.Find("td")
		if th.Length() == 0 || tds.Length() < minDataCells {
			page.SkippedCells++
			return
		}

		header := parsing.Fold(cellText(th, " "))
		code := codePattern.FindString(header)
		if code == "" {
			page.SkippedCode++
			return
		}

		pctRaw := cellText(tds.Eq(2), "")
		page.Rows = append(page.Rows, types.EquityRow{
			Code:         code,
			Name:         strings.TrimSpace(strings.ReplaceAll(header, code, "")),
			ClosePrice:   parsing.OptionalInt(cellText(tds.Eq(0), "")),
			PTSPrice:     parsing.OptionalInt(cellText(tds.Eq(1), "")),
			ChangePct:    parsing.OptionalPercent(pctRaw),
			ChangePctRaw: pctRaw,
			Volume:       parsing.OptionalInt(cellText(tds.Eq(3), "")),
		})
	})

	return page
}

// hasBodyTag reports whether the first table inside a gray-sticky-table
// container has an explicit <tbody> start tag.
func hasBodyTag(htmlContent string) bool {
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	divDepth, tableDepth := 0, 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if divDepth == 0 {
				if tag == "div" && hasAttr && isContainer(z) {
					divDepth = 1
				}
				continue
			}
			switch tag {
			case "div":
				divDepth++
			case "table":
				tableDepth++
			case "tbody":
				if tableDepth == 1 {
					return true
				}
			}
		case html.EndTagToken:
			if divDepth == 0 {
				continue
			}
			name, _ := z.TagName()
			switch string(name) {
			case "div":
				divDepth--
			case "table":
				tableDepth--
				if tableDepth == 0 {
					return false
				}
			}
		}
	}
}

func isContainer(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			for _, class := range strings.Fields(string(val)) {
				if class == "gray-sticky-table" {
					return true
				}
			}
		}
		if !more {
			return false
		}
	}
}

// cellText joins the trimmed, non-empty text nodes under sel with sep.
func cellText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
