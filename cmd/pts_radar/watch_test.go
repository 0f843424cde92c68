package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pts-radar/internal/export"
	"github.com/jonathan/pts-radar/internal/schemas"
)

func TestWatchJob_ExportsTimestampedRun(t *testing.T) {
	writeConfig(t, newUpstream(t))
	a, err := newApp(false)
	require.NoError(t, err)

	params, err := (&requestFlags{}).params(a.cfg.Defaults)
	require.NoError(t, err)

	dir := t.TempDir()
	job := watchJob(a, params, dir, export.FormatJSON)
	require.NoError(t, job(context.Background()))

	matches, err := filepath.Glob(filepath.Join(dir, "pts-radar-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateRun(data))
}

func TestWatchJob_NoExportDir(t *testing.T) {
	writeConfig(t, newUpstream(t))
	a, err := newApp(false)
	require.NoError(t, err)

	params, err := (&requestFlags{}).params(a.cfg.Defaults)
	require.NoError(t, err)
	assert.NoError(t, watchJob(a, params, "", export.FormatJSON)(context.Background()))
}
