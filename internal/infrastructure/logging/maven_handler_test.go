package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
)

func TestMavenHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, nil)).With(SystemKey, "parser")

	logger.Info("Parsed document", "records", 3, "tag", "card_statement")

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[INFO\] \[parser\] \[\d{2}:\d{2}:\d{2}\] Parsed document`), line)
	assert.Contains(t, line, "records=3")
	assert.Contains(t, line, "tag=card_statement")
	assert.NotContains(t, line, "system=")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestMavenHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestMavenHandler_GroupsAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, nil))

	logger.WithGroup("match").Info("Scored", "score", 80, "vendor", "amazon marketplace")

	line := buf.String()
	assert.Contains(t, line, "match.score=80")
	assert.Contains(t, line, `match.vendor="amazon marketplace"`)
}

func TestMavenHandler_NoColorsForBuffers(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewMavenHandler(&buf, nil)).Error("boom")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestNewLoggerTo_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})
	logger.Debug("hello", "k", "v")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
	assert.Equal(t, "v", decoded["k"])

	buf.Reset()
	NewLoggerTo(&buf, config.LoggingConfig{Format: "text"}).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestWithSystem(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerTo(&buf, config.LoggingConfig{})

	WithSystem(base, "storage").Info("Opened database")
	base.Info("Untagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[INFO] [storage] "))
	assert.NotContains(t, lines[1], "[storage]")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
