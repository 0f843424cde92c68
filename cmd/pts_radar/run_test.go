package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/pts-radar/internal/export"
)

// withRunFlags sets the run command flags for one test.
func withRunFlags(t *testing.T, req requestFlags, exportPath string, verbose bool) *bytes.Buffer {
	t.Helper()
	prevReq, prevExport, prevVerbose := runRequest, runExport, runVerbose
	runRequest, runExport, runVerbose = req, exportPath, verbose
	t.Cleanup(func() {
		runRequest, runExport, runVerbose = prevReq, prevExport, prevVerbose
		runCmd.SetOut(nil)
		runCmd.SetErr(nil)
	})

	var out bytes.Buffer
	runCmd.SetOut(&out)
	runCmd.SetErr(&out)
	return &out
}

func TestRunCommand_PrintsResult(t *testing.T) {
	writeConfig(t, newUpstream(t))
	out := withRunFlags(t, requestFlags{}, "", true)

	require.NoError(t, runRun(runCmd, nil))

	text := out.String()
	assert.Contains(t, text, "[crawl]")
	assert.Contains(t, text, "🟦=today 🟨=yesterday")
	assert.Contains(t, text, "7203")
	assert.Contains(t, text, "🟦 決算短信")
	assert.Contains(t, text, "9984")
	assert.Contains(t, text, "🟨 (no title)")
	assert.Contains(t, text, "RUN SUMMARY")
}

func TestRunCommand_ExportsXLSX(t *testing.T) {
	writeConfig(t, newUpstream(t))
	path := filepath.Join(t.TempDir(), "surges.xlsx")
	out := withRunFlags(t, requestFlags{pctMin: "15"}, path, false)

	require.NoError(t, runRun(runCmd, nil))
	assert.Contains(t, out.String(), "Exported 1 records")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(export.SheetSurges)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "7203", rows[1][0])
}

func TestRunCommand_RejectsBadInputBeforeFetching(t *testing.T) {
	upstream := newUpstream(t)
	writeConfig(t, upstream)
	withRunFlags(t, requestFlags{maxPages: "0"}, "", false)

	err := runRun(runCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_pages")
}

func TestRunCommand_RejectsUnknownExportFormat(t *testing.T) {
	writeConfig(t, newUpstream(t))
	path := filepath.Join(t.TempDir(), "surges.csv")
	withRunFlags(t, requestFlags{}, path, false)

	err := runRun(runCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
