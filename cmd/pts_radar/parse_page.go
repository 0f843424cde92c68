package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/jonathan/pts-radar/internal/crawling"
)

var parsePageCmd = &cobra.Command{
	Use:   "parse-page <file|url>",
	Short: "Parse one ranking page and print its equity rows as JSON",
	Long:  "Parse a saved ranking page (or fetch one by URL) and print the equity rows it yields. Useful for checking the parser against markup changes.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParsePage,
}

func init() {
	rootCmd.AddCommand(parsePageCmd)
}

func runParsePage(cmd *cobra.Command, args []string) error {
	source := args[0]

	var content []byte
	if isURL(source) {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		content, err = a.rankingFetcher().Fetch(context.Background(), source)
		if err != nil {
			return err
		}
	} else {
		var err error
		content, err = os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read page: %w", err)
		}
	}

	page := crawling.ParsePage(string(content))
	if !page.TableFound {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no table matching %q\n", crawling.TableSelector)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Parsed %d rows (%d skipped: %d malformed, %d without code)\n",
		len(page.Rows), page.Skipped(), page.SkippedCells, page.SkippedCode)

	return printJSON(cmd, page.Rows)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// printJSON writes v to stdout as indented JSON without HTML escaping.
func printJSON(cmd *cobra.Command, v any) error {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err := cmd.OutOrStdout().Write(pretty.Pretty([]byte(b.String())))
	return err
}
