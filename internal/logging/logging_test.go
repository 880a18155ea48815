package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	logger.Debug("hidden")
	logger.With("component", "apiclient").Info("request", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "apiclient", line["component"])
	assert.EqualValues(t, 200, line["status"])
}

func TestNew_ColorLine(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	logger := New(&buf, "debug", "text")
	logger.With("component", "webadmin", "bid", "b-1").WithGroup("req").Warn("slow", "ms", 900, "path", "/users list")

	out := buf.String()
	assert.Contains(t, out, "WRN [webadmin] slow")
	assert.Contains(t, out, " bid=b-1")
	assert.Contains(t, out, " req.ms=900")
	assert.Contains(t, out, ` req.path="/users list"`)
	assert.NotContains(t, out, "req.bid", "attrs attached before the group stay ungrouped")
}

func TestNew_ColorLineGroupAttr(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	New(&buf, "info", "").Error("fetch failed", slog.Group("http", "status", 502), "error", "bad gateway")

	out := buf.String()
	assert.Contains(t, out, "ERR fetch failed")
	assert.Contains(t, out, " http.status=502")
	assert.Contains(t, out, ` error="bad gateway"`)
}
