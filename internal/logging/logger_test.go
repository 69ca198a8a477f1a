package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNew_JSONLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		wantMsgs []string
	}{
		{name: "info drops debug", level: "info", wantMsgs: []string{"info", "warn", "error"}},
		{name: "debug keeps all", level: "debug", wantMsgs: []string{"debug", "info", "warn", "error"}},
		{name: "error only", level: "error", wantMsgs: []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, flush, err := New(Options{Level: tt.level, Format: "json", Output: &buf})
			require.NoError(t, err)

			logger.Debug("debug")
			logger.Info("info")
			logger.Warn("warn")
			logger.Error("error")
			flush()

			var msgs []string
			for _, line := range decodeLines(t, &buf) {
				msgs = append(msgs, line["msg"].(string))
			}
			assert.Equal(t, tt.wantMsgs, msgs)
		})
	}
}

func TestNew_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.With("branch", "authored").Info("fetch complete", "records", 3)
	logger.Warn("pagination cap reached", "query", "author:octocat")
	logger.Debug("page fetched")
	flush()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "authored", lines[0]["branch"])
	assert.EqualValues(t, 3, lines[0]["records"])
	assert.Equal(t, "info", lines[0]["level"])

	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, "author:octocat", lines[1]["query"])

	assert.Equal(t, "debug", lines[2]["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := New(Options{Level: "info", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Info("server listening", "addr", "127.0.0.1:8080")
	flush()

	assert.Contains(t, buf.String(), "server listening")
	assert.Contains(t, buf.String(), "127.0.0.1:8080")
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(Options{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, _, err = New(Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
