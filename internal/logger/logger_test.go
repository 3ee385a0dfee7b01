package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, Level(false, false))
	assert.Equal(t, zapcore.DebugLevel, Level(true, false))
	assert.Equal(t, zapcore.WarnLevel, Level(false, true))
	assert.Equal(t, zapcore.DebugLevel, Level(true, true))
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Output: &buf})
	require.NoError(t, err)

	log.Debugw("hidden", "file", "a.d.ts")
	log.Infow("emitted declaration files", "count", 2)
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "INFO emitted declaration files {\"count\": 2}\n", out)
}

func TestQuiet(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Quiet: true, Output: &buf})
	require.NoError(t, err)

	log.Info("progress")
	log.Warn("careful")
	assert.False(t, strings.Contains(buf.String(), "progress"))
	assert.Contains(t, buf.String(), "WARN careful")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Verbose: true, Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	log.Debugw("flattened interface", "decl", "Point3", "members", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "flattened interface", entry["msg"])
	assert.Equal(t, "Point3", entry["decl"])
	assert.Equal(t, float64(3), entry["members"])
	assert.Contains(t, entry, "ts")
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}
