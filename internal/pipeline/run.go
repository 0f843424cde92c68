// Package pipeline orchestrates one acquisition run: crawl, filter, feed load, tag, correlate.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/pts-radar/internal/correlate"
	"github.com/jonathan/pts-radar/internal/crawling"
	"github.com/jonathan/pts-radar/internal/disclosure"
	"github.com/jonathan/pts-radar/internal/fetch"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/metrics"
	"github.com/jonathan/pts-radar/internal/types"
)

// Options holds the collaborators of a Runner
type Options struct {
	// RankingFetcher retrieves ranking pages; FeedFetcher retrieves the disclosure feed.
	// FeedFetcher defaults to RankingFetcher.
	RankingFetcher fetch.Fetcher
	FeedFetcher    fetch.Fetcher
	Crawl          crawling.Options
	FeedURL        string
	Logger         logger.Logger
	Metrics        *metrics.Manager
	OnProgress     ProgressCallback
}

// Result is the outcome of one successful run.
type Result struct {
	RunID       uuid.UUID                `json:"run_id"`
	StartedAt   time.Time                `json:"started_at"`
	DurationMS  int64                    `json:"duration_ms"`
	Params      types.RunParams          `json:"params"`
	LastPage    int                      `json:"last_page"`
	CrawledRows int                      `json:"crawled_rows"`
	Records     []types.CorrelatedRecord `json:"records"`
	Summary     types.Summary            `json:"summary"`
	Diagnostics Diagnostics              `json:"diagnostics"`
}

// Diagnostics explains how a run reached its records.
type Diagnostics struct {
	Pages      []crawling.PageStat `json:"pages"`
	StopReason string              `json:"stop_reason"`
	// MissingValues counts crawled rows without a percentage or volume
	MissingValues int `json:"missing_values"`
	// BelowFloor counts crawled rows under the percentage threshold or volume floor
	BelowFloor int                  `json:"below_floor"`
	FeedURL    string               `json:"feed_url"`
	Load       disclosure.LoadStats `json:"load"`
	DateCounts map[string]int       `json:"date_counts"`
	TagCounts  map[types.DayTag]int `json:"tag_counts"`
	Window     disclosure.Window    `json:"window"`
}

// Runner executes runs. Runs share no state, but a Runner's collaborators
// are not required to be safe for concurrent use; callers serialize.
type Runner struct {
	rankingFetcher fetch.Fetcher
	crawlOpts      crawling.Options
	feed           *disclosure.Client
	logger         logger.Logger
	metrics        *metrics.Manager
	onProgress     ProgressCallback
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	feedFetcher := opts.FeedFetcher
	if feedFetcher == nil {
		feedFetcher = opts.RankingFetcher
	}
	loader := disclosure.NewLoader(log, opts.Metrics)

	return &Runner{
		rankingFetcher: opts.RankingFetcher,
		crawlOpts:      opts.Crawl,
		feed:           disclosure.NewClient(feedFetcher, opts.FeedURL, loader, log),
		logger:         log,
		metrics:        opts.Metrics,
		onProgress:     opts.OnProgress,
	}
}

// WithProgress returns a copy of r that reports progress to cb instead.
func (r *Runner) WithProgress(cb ProgressCallback) *Runner {
	clone := *r
	clone.onProgress = cb
	return &clone
}

// Run executes one acquisition run. A transport failure in any step aborts
// the run with a *StepError and no partial result.
func (r *Runner) Run(ctx context.Context, params types.RunParams) (result *Result, err error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	runID := uuid.New()
	startedAt := time.Now()
	log := r.logger.With(logger.String("run_id", runID.String()))
	defer func() {
		r.metrics.RunFinished(err, time.Since(startedAt))
	}()

	log.Info("run started",
		logger.Stringer("pct_min", params.PctThreshold),
		logger.Int("vol_min", int(params.VolumeFloor)),
		logger.Int("max_pages", params.MaxPages),
		logger.Bool("full_scan", params.FullScan))

	// Step 1: crawl
	crawlOpts := r.crawlOpts
	crawlOpts.FullScan = params.FullScan
	crawler := crawling.NewCrawler(r.rankingFetcher, crawlOpts, log, r.metrics)

	crawl, err := crawler.Crawl(ctx, params.PctThreshold, params.MaxPages)
	if err != nil {
		log.Error("crawl failed", logger.Error(err))
		return nil, &StepError{Step: StepCrawl, Cause: err}
	}
	r.emitProgress(runID, StepCrawl,
		fmt.Sprintf("Crawled %d pages, %d rows (%s)", crawl.LastPage, len(crawl.Rows), crawl.StopReason), crawl)

	// Step 2: filter
	filtered, missing, below := FilterRows(crawl.Rows, params)
	r.emitProgress(runID, StepFilter,
		fmt.Sprintf("Kept %d of %d rows", len(filtered), len(crawl.Rows)), nil)

	// Steps 3-4: feed load and tag
	batch, err := r.feed.FetchRecent(ctx)
	if err != nil {
		log.Error("disclosure feed failed", logger.Error(err))
		return nil, &StepError{Step: StepFeed, Cause: err}
	}
	r.emitProgress(runID, StepFeed,
		fmt.Sprintf("Loaded %d disclosures", batch.Stats.Retained), batch.Stats)
	r.emitProgress(runID, StepTag, "Tagged disclosures by publish date", batch.Window)

	// Step 5: correlate
	records := correlate.Correlate(filtered, batch.Rows)
	r.emitProgress(runID, StepCorrelate,
		fmt.Sprintf("Correlated %d records", len(records)), nil)

	// Step 6: summarize
	summary := correlate.Summarize(records)
	r.emitProgress(runID, StepSummarize,
		fmt.Sprintf("With disclosures: %d / without: %d", summary.WithDisclosures, summary.WithoutDisclosures), summary)

	result = &Result{
		RunID:       runID,
		StartedAt:   startedAt,
		DurationMS:  time.Since(startedAt).Milliseconds(),
		Params:      params,
		LastPage:    crawl.LastPage,
		CrawledRows: len(crawl.Rows),
		Records:     records,
		Summary:     summary,
		Diagnostics: Diagnostics{
			Pages:         crawl.Pages,
			StopReason:    crawl.StopReason,
			MissingValues: missing,
			BelowFloor:    below,
			FeedURL:       batch.URL,
			Load:          batch.Stats,
			DateCounts:    disclosure.CountByDate(batch.Rows),
			TagCounts:     disclosure.CountByTag(batch.Rows),
			Window:        batch.Window,
		},
	}

	log.Info("run finished",
		logger.Int("last_page", result.LastPage),
		logger.Int("records", summary.Total),
		logger.Int("with_disclosures", summary.WithDisclosures),
		logger.Duration("elapsed", time.Since(startedAt)))

	return result, nil
}

// FilterRows drops rows lacking a percentage or volume, then keeps rows with
// pct >= threshold and volume >= floor. Order is preserved. It also reports
// how many rows were dropped for each reason.
func FilterRows(rows []types.EquityRow, params types.RunParams) (kept []types.EquityRow, missing, below int) {
	kept = make([]types.EquityRow, 0, len(rows))
	for _, row := range rows {
		if row.ChangePct == nil || row.Volume == nil {
			missing++
			continue
		}
		if row.ChangePct.LessThan(params.PctThreshold) || *row.Volume < params.VolumeFloor {
			below++
			continue
		}
		kept = append(kept, row)
	}
	return kept, missing, below
}
