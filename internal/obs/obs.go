// Package obs owns the process-wide structured logger and the correlation
// fields (run, scenario, browser session, request) attached to every record.
package obs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type correlationContextKey struct{}

// Correlation carries identifiers that tie log records to one harness run.
type Correlation struct {
	RunID     string
	Scenario  string
	SessionID string
	RequestID string
}

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
	level    = new(slog.LevelVar)
)

// Init configures the global structured logger.
func Init() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return
	}
	logger = newLogger(os.Stderr)
	slog.SetDefault(logger)
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetOutputForTests overrides the global logger output for tests.
func SetOutputForTests(w io.Writer) func() {
	loggerMu.Lock()
	prev := logger
	logger = newLogger(w)
	slog.SetDefault(logger)
	loggerMu.Unlock()

	return func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if prev != nil {
			logger = prev
		} else {
			logger = newLogger(os.Stderr)
		}
		slog.SetDefault(logger)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				t, ok := attr.Value.Any().(time.Time)
				if ok {
					return slog.String(slog.TimeKey, t.UTC().Format(time.RFC3339Nano))
				}
			}
			return attr
		},
	})
	return slog.New(handler)
}

func globalLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init()
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Pkg returns a logger tagged with package name.
func Pkg(pkg string) *slog.Logger {
	return globalLogger().With("pkg", pkg)
}

// PkgSession returns the package logger tagged with one browser session.
func PkgSession(pkg, sessionID string) *slog.Logger {
	return Attach(WithSession(context.Background(), sessionID), Pkg(pkg))
}

// From returns a logger with correlation fields from context.
func From(ctx context.Context) *slog.Logger {
	return Attach(ctx, globalLogger())
}

// Attach adds the correlation fields from ctx to l.
func Attach(ctx context.Context, l *slog.Logger) *slog.Logger {
	attrs := correlationAttrs(CorrelationFromContext(ctx))
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "run-" + uuid.NewString()
}

// NewSessionID returns a fresh browser session identifier.
func NewSessionID() string {
	return "sess-" + uuid.NewString()
}

// WithRun stores run_id in context.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithCorrelation(ctx, Correlation{RunID: runID})
}

// WithScenario stores the scenario name in context.
func WithScenario(ctx context.Context, scenario string) context.Context {
	return WithCorrelation(ctx, Correlation{Scenario: scenario})
}

// WithSession stores the browser session id in context.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return WithCorrelation(ctx, Correlation{SessionID: sessionID})
}

// RunIDFromContext returns run_id from context, or "unknown".
func RunIDFromContext(ctx context.Context) string {
	corr := CorrelationFromContext(ctx)
	if corr.RunID == "" {
		return "unknown"
	}
	return corr.RunID
}

// WithCorrelation merges the non-empty fields of corr into the context.
func WithCorrelation(ctx context.Context, corr Correlation) context.Context {
	existing := CorrelationFromContext(ctx)
	if v := strings.TrimSpace(corr.RunID); v != "" {
		existing.RunID = v
	}
	if v := strings.TrimSpace(corr.Scenario); v != "" {
		existing.Scenario = v
	}
	if v := strings.TrimSpace(corr.SessionID); v != "" {
		existing.SessionID = v
	}
	if v := strings.TrimSpace(corr.RequestID); v != "" {
		existing.RequestID = v
	}
	return context.WithValue(ctx, correlationContextKey{}, existing)
}

// CorrelationFromContext returns correlation fields from context.
func CorrelationFromContext(ctx context.Context) Correlation {
	if ctx == nil {
		return Correlation{}
	}
	corr, ok := ctx.Value(correlationContextKey{}).(Correlation)
	if !ok {
		return Correlation{}
	}
	return corr
}

func correlationAttrs(corr Correlation) []any {
	attrs := make([]any, 0, 8)
	if corr.RunID != "" {
		attrs = append(attrs, "run_id", corr.RunID)
	}
	if corr.Scenario != "" {
		attrs = append(attrs, "scenario", corr.Scenario)
	}
	if corr.SessionID != "" {
		attrs = append(attrs, "session_id", corr.SessionID)
	}
	if corr.RequestID != "" {
		attrs = append(attrs, "request_id", corr.RequestID)
	}
	return attrs
}

func newRequestID() string {
	return "req-" + uuid.NewString()
}
