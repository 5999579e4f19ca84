package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		out = append(out, rec)
	}
	return out
}

func TestContextLoggingCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	InfoContext(ctx, "HTTP request", "status", 200)
	Info("no request")

	recs := lines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "req-42", recs[0]["request_id"])
	assert.Equal(t, "fieldmatch", recs[0]["app"])
	assert.Equal(t, float64(200), recs[0]["status"])
	assert.NotContains(t, recs[1], "request_id")
}

func TestMethodTracingRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	EnterMethod("matchService.JoinRequest", "matchRequestID", 7)
	ExitMethodWithError("matchService.JoinRequest", errors.New("state conflict"), "matchRequestID", 7)
	DatabaseResult("INSERT", 0, errors.New("duplicate"))

	recs := lines(t, &buf)
	require.Len(t, recs, 2, "debug entry is filtered at info level")
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "matchService.JoinRequest", recs[0]["method"])
	assert.Equal(t, "state conflict", recs[0]["error"])
	assert.Equal(t, "ERROR", recs[1]["level"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
