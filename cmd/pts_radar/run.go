package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/pts-radar/internal/export"
	"github.com/jonathan/pts-radar/internal/observability"
	"github.com/jonathan/pts-radar/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one crawl and print the surging equities with their disclosures",
	Long: `Crawls the ranking until the change percent falls below --pct-min (or --max-pages is reached),
filters by --pct-min and --vol-min, fetches the recent TDnet feed and prints each equity with up to
five of its disclosures. Flags override the defaults section of the config file.`,
	RunE: runRun,
}

var (
	runRequest  requestFlags
	runDebug    bool
	runVerbose  bool
	runExport   string
	runNoOutput bool
)

func init() {
	runRequest.register(runCmd)
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Print crawl and feed diagnostics and log at debug level")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print step progress while running")
	runCmd.Flags().StringVarP(&runExport, "export", "o", "", "Also write the result to this .json or .xlsx file")
	runCmd.Flags().BoolVar(&runNoOutput, "quiet", false, "Do not print the result tables")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, err := newApp(runDebug)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	params, err := runRequest.params(a.cfg.Defaults)
	if err != nil {
		return err
	}
	if runExport != "" {
		if f := export.FormatOf(runExport); f != export.FormatJSON && f != export.FormatXLSX {
			return fmt.Errorf("unsupported export format %q (use .json or .xlsx)", runExport)
		}
	}

	printer := observability.NewPrinter(cmd.OutOrStdout()).WithDebug(runDebug)
	var onProgress pipeline.ProgressCallback
	if runVerbose {
		onProgress = printer.PrintProgress
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.newRunner(onProgress).Run(ctx, params)
	if err != nil {
		return err
	}

	if !runNoOutput {
		printer.PrintResult(result)
	}
	if runExport != "" {
		if err := export.Write(runExport, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(result.Records), runExport)
	}
	return nil
}
