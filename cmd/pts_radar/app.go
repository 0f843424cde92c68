package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonathan/pts-radar/internal/config"
	"github.com/jonathan/pts-radar/internal/fetch"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/metrics"
	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/types"
)

// app bundles the collaborators every command builds from config.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Manager
}

func newApp(debug bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.Log
	if debug {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  metrics.NewManager(registry),
	}, nil
}

// rankingFetcher returns the headless browser fetcher when ranking.use_browser is set.
func (a *app) rankingFetcher() fetch.Fetcher {
	if a.cfg.Ranking.UseBrowser {
		return fetch.NewBrowserFetcher(a.cfg.HTTP.Timeout)
	}
	return fetch.NewHTTPFetcher(a.cfg.FetchOptions())
}

func (a *app) feedFetcher() fetch.Fetcher {
	return fetch.NewHTTPFetcher(a.cfg.FetchOptions())
}

func (a *app) newRunner(onProgress pipeline.ProgressCallback) *pipeline.Runner {
	return pipeline.NewRunner(pipeline.Options{
		RankingFetcher: a.rankingFetcher(),
		FeedFetcher:    a.feedFetcher(),
		Crawl:          a.cfg.CrawlOptions(false),
		FeedURL:        a.cfg.Disclosure.FeedURL,
		Logger:         a.log,
		Metrics:        a.metrics,
		OnProgress:     onProgress,
	})
}

// requestFlags holds the run parameter flags shared by run and watch.
type requestFlags struct {
	pctMin   string
	volMin   string
	maxPages string
	fullScan bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pctMin, "pct-min", "", "Minimum change percent, e.g. 5 or 5.5% (defaults to defaults.pct_min)")
	cmd.Flags().StringVar(&f.volMin, "vol-min", "", "Minimum PTS volume (defaults to defaults.vol_min)")
	cmd.Flags().StringVar(&f.maxPages, "max-pages", "", fmt.Sprintf("Page ceiling, 1-%d (defaults to defaults.max_pages)", config.MaxPagesLimit))
	cmd.Flags().BoolVar(&f.fullScan, "full-scan", false, "Crawl every page up to the ceiling, ignoring the threshold stop")
}

// params merges the flags over the configured defaults and parses them.
func (f *requestFlags) params(defaults config.DefaultsConfig) (types.RunParams, error) {
	return pipeline.ParseRequest(
		orDefault(f.pctMin, defaults.PctMin),
		orDefault(f.volMin, defaults.VolMin),
		orDefault(f.maxPages, defaults.MaxPages),
		f.fullScan,
	)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
