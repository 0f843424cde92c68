package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/pts-radar/internal/disclosure"
	"github.com/jonathan/pts-radar/internal/types"
)

var loadFeedCmd = &cobra.Command{
	Use:   "load-feed [file]",
	Short: "Load the disclosure feed and print load statistics",
	Long: `Load a saved feed payload (or fetch disclosure.feed_url when no file is given), tag it relative
to its newest dates and print the load statistics, the today/yesterday window and the date histogram.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoadFeed,
}

var loadFeedRows bool

func init() {
	loadFeedCmd.Flags().BoolVar(&loadFeedRows, "rows", false, "Include the loaded rows in the output")
	rootCmd.AddCommand(loadFeedCmd)
}

// feedReport is the load-feed output.
type feedReport struct {
	Source     string                `json:"source"`
	Stats      disclosure.LoadStats  `json:"stats"`
	Window     disclosure.Window     `json:"window"`
	DateCounts map[string]int        `json:"date_counts"`
	TagCounts  map[types.DayTag]int  `json:"tag_counts"`
	Rows       []types.DisclosureRow `json:"rows,omitempty"`
}

func runLoadFeed(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	loader := disclosure.NewLoader(a.log, a.metrics)

	var batch *disclosure.Batch
	if len(args) == 1 {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read feed: %w", err)
		}
		rows, stats := loader.Load(payload)
		tagged, window := disclosure.Tag(rows)
		batch = &disclosure.Batch{URL: args[0], Rows: tagged, Stats: stats, Window: window}
	} else {
		client := disclosure.NewClient(a.feedFetcher(), a.cfg.Disclosure.FeedURL, loader, a.log)
		batch, err = client.FetchRecent(context.Background())
		if err != nil {
			return err
		}
	}

	report := feedReport{
		Source:     batch.URL,
		Stats:      batch.Stats,
		Window:     batch.Window,
		DateCounts: disclosure.CountByDate(batch.Rows),
		TagCounts:  disclosure.CountByTag(batch.Rows),
	}
	if loadFeedRows {
		report.Rows = batch.Rows
	}
	return printJSON(cmd, report)
}
