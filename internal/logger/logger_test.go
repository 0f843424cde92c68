package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Defaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Equal(t, DefaultLevel, cfg.Level)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFromZap_WithAttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(String("run_id", "abc"))

	l.Warn("feed repaired", Int("items", 3), Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "feed repaired", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["run_id"])
	assert.Equal(t, int64(3), ctx["items"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	assert.Same(t, l, l.With(String("k", "v")))
	assert.NoError(t, l.Sync())
}
