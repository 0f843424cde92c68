package crawling

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/jonathan/pts-radar/internal/fetch"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/metrics"
	"github.com/jonathan/pts-radar/internal/types"
)

// DefaultURLTemplate is the Kabutan PTS night-session price increase ranking.
const DefaultURLTemplate = "https://s.kabutan.jp/warnings/pts_night_price_increase/?page={page}"

// PagePlaceholder is substituted with the 1-based page number.
const PagePlaceholder = "{page}"

// Why a crawl ended.
const (
	StopEmptyPage      = "empty_page"
	StopBelowThreshold = "below_threshold"
	StopNoPercentage   = "no_percentage"
	StopMaxPages       = "max_pages"
)

// Options configures a Crawler.
type Options struct {
	URLTemplate string
	// PageInterval spaces consecutive page fetches; zero fetches back to back.
	PageInterval time.Duration
	// FullScan ignores the percentage threshold. The ranking is assumed to be
	// sorted by descending change percent; full scan is the fallback when that
	// assumption is in doubt.
	FullScan bool
}

// PageStat describes one visited page.
type PageStat struct {
	Page    int              `json:"page"`
	Rows    int              `json:"rows"`
	Skipped int              `json:"skipped"`
	MaxPct  *decimal.Decimal `json:"max_pct"`
}

// CrawlResult is the outcome of a completed crawl.
type CrawlResult struct {
	Rows       []types.EquityRow `json:"-"`
	LastPage   int               `json:"last_page"`
	Pages      []PageStat        `json:"pages"`
	StopReason string            `json:"stop_reason"`
}

// Crawler walks the ranking pages in order.
type Crawler struct {
	fetcher fetch.Fetcher
	opts    Options
	limiter *rate.Limiter
	logger  logger.Logger
	metrics *metrics.Manager
}

// NewCrawler creates a Crawler. A nil logger discards log output; a nil metrics manager records nothing.
func NewCrawler(fetcher fetch.Fetcher, opts Options, log logger.Logger, m *metrics.Manager) *Crawler {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultURLTemplate
	}
	if log == nil {
		log = logger.NewNop()
	}

	var limiter *rate.Limiter
	if opts.PageInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PageInterval), 1)
	}

	return &Crawler{
		fetcher: fetcher,
		opts:    opts,
		limiter: limiter,
		logger:  log,
		metrics: m,
	}
}

// PageURL renders the ranking URL for page.
func PageURL(template string, page int) string {
	return strings.ReplaceAll(template, PagePlaceholder, strconv.Itoa(page))
}

// Crawl visits pages 1..maxPages. A page with zero rows ends the crawl without
// contributing rows. Otherwise its rows are kept, and the crawl ends after it
// when the page's highest change percent is undefined or below threshold.
// Any fetch failure aborts the crawl with no partial result.
func (c *Crawler) Crawl(ctx context.Context, threshold decimal.Decimal, maxPages int) (*CrawlResult, error) {
	if maxPages < 1 {
		return nil, &CrawlError{Message: "max pages must be at least 1"}
	}

	result := &CrawlResult{StopReason: StopMaxPages}

	for page := 1; page <= maxPages; page++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &CrawlError{Page: page, Message: "waiting for page slot", Cause: err}
			}
		}

		url := PageURL(c.opts.URLTemplate, page)
		body, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, &CrawlError{Page: page, Message: "failed to fetch ranking page", Cause: err}
		}

		parsed := ParsePage(string(body))
		result.LastPage = page
		c.metrics.PageFetched(len(parsed.Rows))
		c.metrics.RowsSkipped(metrics.ReasonMissingCells, parsed.SkippedCells)
		c.metrics.RowsSkipped(metrics.ReasonMissingCode, parsed.SkippedCode)

		stat := PageStat{Page: page, Rows: len(parsed.Rows), Skipped: parsed.Skipped()}

		if len(parsed.Rows) == 0 {
			result.Pages = append(result.Pages, stat)
			result.StopReason = StopEmptyPage
			c.logger.Debug("ranking page empty, stopping",
				logger.Int("page", page),
				logger.Bool("table_found", parsed.TableFound))
			break
		}

		for i := range parsed.Rows {
			parsed.Rows[i].Page = page
		}
		result.Rows = append(result.Rows, parsed.Rows...)

		stat.MaxPct = maxChangePct(parsed.Rows)
		result.Pages = append(result.Pages, stat)
		c.logger.Debug("ranking page parsed",
			logger.Int("page", page),
			logger.Int("rows", stat.Rows),
			logger.Int("skipped", stat.Skipped),
			logger.String("max_pct", formatPct(stat.MaxPct)))

		if c.opts.FullScan {
			continue
		}
		if stat.MaxPct == nil {
			result.StopReason = StopNoPercentage
			break
		}
		if stat.MaxPct.LessThan(threshold) {
			result.StopReason = StopBelowThreshold
			break
		}
	}

	return result, nil
}

// maxChangePct returns the highest defined change percent, or nil when none is defined.
func maxChangePct(rows []types.EquityRow) *decimal.Decimal {
	var best *decimal.Decimal
	for i := range rows {
		pct := rows[i].ChangePct
		if pct == nil {
			continue
		}
		if best == nil || pct.GreaterThan(*best) {
			best = pct
		}
	}
	if best == nil {
		return nil
	}
	v := *best
	return &v
}

func formatPct(d *decimal.Decimal) string {
	if d == nil {
		return "none"
	}
	return d.String()
}
