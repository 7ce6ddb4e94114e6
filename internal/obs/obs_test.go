package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), "line: %s", line)
		records = append(records, rec)
	}
	return records
}

func TestFrom_AttachesCorrelation(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()
	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)

	ctx := WithRun(context.Background(), "run-1")
	ctx = WithScenario(ctx, "search")
	ctx = WithSession(ctx, "sess-9")
	From(ctx).Info("submitted search", "term", "Batman")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Equal(t, "search", rec["scenario"])
	assert.Equal(t, "sess-9", rec["session_id"])
	assert.Equal(t, "Batman", rec["term"])
	assert.NotContains(t, rec, "request_id")
}

func TestPkgSession_TagsSessionOnly(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	ctx := WithScenario(WithRun(context.Background(), "run-2"), "details")
	Attach(ctx, PkgSession("moviepage", "sess-3")).Info("opened result")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "moviepage", records[0]["pkg"])
	assert.Equal(t, "sess-3", records[0]["session_id"])
	assert.Equal(t, "run-2", records[0]["run_id"])
	assert.Equal(t, "details", records[0]["scenario"])
}

func TestWithCorrelation_KeepsExistingFields(t *testing.T) {
	ctx := WithRun(context.Background(), "run-a")
	ctx = WithCorrelation(ctx, Correlation{Scenario: "theme", RunID: "   "})

	corr := CorrelationFromContext(ctx)
	assert.Equal(t, "run-a", corr.RunID, "blank fields must not overwrite")
	assert.Equal(t, "theme", corr.Scenario)
	assert.Equal(t, "unknown", RunIDFromContext(context.Background()))
}

func TestNewRunID_Unique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.True(t, strings.HasPrefix(a, "run-"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(NewSessionID(), "sess-"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestAccessLogMiddleware_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()
	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)

	h := RequestContextMiddleware(AccessLogMiddleware("fixture", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("busy"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/movies?page=2", nil)
	req.Header.Set("X-Request-Id", "req-fixed")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-fixed", rec.Header().Get("X-Request-Id"))

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "http_access", records[0]["msg"])
	assert.Equal(t, "req-fixed", records[0]["request_id"])
	assert.EqualValues(t, http.StatusServiceUnavailable, records[0]["status"])
	assert.EqualValues(t, 4, records[0]["resp_bytes"])
	assert.Equal(t, "page=2", records[0]["query"])
}
