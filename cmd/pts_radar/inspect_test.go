package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return &out
}

func TestParsePageCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(testRankingPage("7203", "+20.00%", "1301", "-")), 0644))
	out := captureOutput(t)

	require.NoError(t, runParsePage(parsePageCmd, []string{path}))

	var rows []struct {
		Code      string  `json:"code"`
		ChangePct *string `json:"change_pct"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "7203", rows[0].Code)
	require.NotNil(t, rows[0].ChangePct)
	assert.Equal(t, "20", *rows[0].ChangePct)
	assert.Nil(t, rows[1].ChangePct)
}

func TestParsePageCommand_MissingFile(t *testing.T) {
	captureOutput(t)
	err := runParsePage(parsePageCmd, []string{filepath.Join(t.TempDir(), "missing.html")})
	assert.Error(t, err)
}

func TestLoadFeedCommand_File(t *testing.T) {
	writeConfig(t, newUpstream(t))
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(testFeed), 0644))
	out := captureOutput(t)

	require.NoError(t, runLoadFeed(loadFeedCmd, []string{path}))

	var report struct {
		Source string `json:"source"`
		Stats  struct {
			Retained int `json:"retained"`
		} `json:"stats"`
		Window struct {
			Today     string `json:"today"`
			Yesterday string `json:"yesterday"`
		} `json:"window"`
		TagCounts map[string]int `json:"tag_counts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, path, report.Source)
	assert.Equal(t, 2, report.Stats.Retained)
	assert.Equal(t, "2024-05-10", report.Window.Today)
	assert.Equal(t, "2024-05-09", report.Window.Yesterday)
	assert.Equal(t, 1, report.TagCounts["today"])
}

func TestLoadFeedCommand_FetchesConfiguredFeed(t *testing.T) {
	upstream := newUpstream(t)
	writeConfig(t, upstream)
	out := captureOutput(t)

	require.NoError(t, runLoadFeed(loadFeedCmd, nil))
	assert.Contains(t, out.String(), upstream.URL+"/feed")
}
