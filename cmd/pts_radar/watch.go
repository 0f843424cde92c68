package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/pts-radar/internal/export"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/schedule"
	"github.com/jonathan/pts-radar/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the crawl on a cron schedule",
	Long: `Runs the pipeline on every tick of --schedule (standard 5-field cron, or descriptors such as
@hourly). A tick that arrives while the previous run is still going is skipped. Each run's summary
is logged; with --export-dir each run is also written to a timestamped file.`,
	RunE: runWatch,
}

var (
	watchRequest     requestFlags
	watchSchedule    string
	watchExportDir   string
	watchFormat      string
	watchMetricsAddr string
	watchRunNow      bool
	watchDebug       bool
)

func init() {
	watchRequest.register(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron expression (defaults to watch.schedule)")
	watchCmd.Flags().StringVar(&watchExportDir, "export-dir", "", "Directory for per-run exports (defaults to watch.export_dir; empty disables export)")
	watchCmd.Flags().StringVar(&watchFormat, "format", export.FormatJSON, "Export format: json or xlsx")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve /metrics on this address, e.g. :9090")
	watchCmd.Flags().BoolVar(&watchRunNow, "run-now", false, "Run once immediately instead of waiting for the first tick")
	watchCmd.Flags().BoolVar(&watchDebug, "debug", false, "Log at debug level")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	a, err := newApp(watchDebug)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	params, err := watchRequest.params(a.cfg.Defaults)
	if err != nil {
		return err
	}
	if watchFormat != export.FormatJSON && watchFormat != export.FormatXLSX {
		return fmt.Errorf("unsupported export format %q (use json or xlsx)", watchFormat)
	}

	expr := orDefault(watchSchedule, a.cfg.Watch.Schedule)
	exportDir := orDefault(watchExportDir, a.cfg.Watch.ExportDir)
	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	job := watchJob(a, params, exportDir, watchFormat)
	scheduler, err := schedule.New(expr, job, schedule.Options{RunOnStart: watchRunNow}, a.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	if watchMetricsAddr != "" {
		srv := &http.Server{
			Addr:              watchMetricsAddr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			a.log.Info("Serving metrics", logger.String("address", watchMetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

// watchJob runs the pipeline once, logs the summary and exports when exportDir is set.
func watchJob(a *app, params types.RunParams, exportDir, format string) schedule.Job {
	runner := a.newRunner(nil)
	return func(ctx context.Context) error {
		result, err := runner.Run(ctx, params)
		if err != nil {
			return err
		}
		a.log.Info("Run summary",
			logger.String("run_id", result.RunID.String()),
			logger.Int("last_page", result.LastPage),
			logger.Int("total", result.Summary.Total),
			logger.Int("with_disclosures", result.Summary.WithDisclosures),
			logger.Int("without_disclosures", result.Summary.WithoutDisclosures),
		)
		if exportDir == "" {
			return nil
		}
		path := export.TimestampedPath(exportDir, format, result.StartedAt)
		if err := export.Write(path, result); err != nil {
			return err
		}
		a.log.Info("Run exported", logger.String("path", path))
		return nil
	}
}
