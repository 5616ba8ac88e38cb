package obs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

type correlationContextKey struct{}

// Correlation carries the identifiers that tie a log line to a test run,
// a browser session or an inbound request.
type Correlation struct {
	RunID     string
	SessionID string
	Test      string
	RequestID string
	CartID    string
}

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
)

// Init configures the global structured logger.
func Init() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return
	}
	logger = newLogger(os.Stderr, levelFromEnv())
	slog.SetDefault(logger)
}

// SetOutputForTests overrides the global logger output for tests.
func SetOutputForTests(w io.Writer) func() {
	loggerMu.Lock()
	prev := logger
	logger = newLogger(w, slog.LevelDebug)
	slog.SetDefault(logger)
	loggerMu.Unlock()

	return func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if prev != nil {
			logger = prev
		} else {
			logger = newLogger(os.Stderr, levelFromEnv())
		}
		slog.SetDefault(logger)
	}
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
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

// From returns a logger with correlation fields from context.
func From(ctx context.Context) *slog.Logger {
	l := globalLogger()
	attrs := correlationAttrs(CorrelationFromContext(ctx))
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

// WithCorrelation merges the non-empty fields of corr into the context.
func WithCorrelation(ctx context.Context, corr Correlation) context.Context {
	existing := CorrelationFromContext(ctx)
	if corr.RunID != "" {
		existing.RunID = corr.RunID
	}
	if corr.SessionID != "" {
		existing.SessionID = corr.SessionID
	}
	if corr.Test != "" {
		existing.Test = corr.Test
	}
	if corr.RequestID != "" {
		existing.RequestID = corr.RequestID
	}
	if corr.CartID != "" {
		existing.CartID = corr.CartID
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
	attrs := make([]any, 0, 10)
	if corr.RunID != "" {
		attrs = append(attrs, "run_id", corr.RunID)
	}
	if corr.SessionID != "" {
		attrs = append(attrs, "session_id", corr.SessionID)
	}
	if corr.Test != "" {
		attrs = append(attrs, "test", corr.Test)
	}
	if corr.RequestID != "" {
		attrs = append(attrs, "request_id", corr.RequestID)
	}
	if corr.CartID != "" {
		attrs = append(attrs, "cart_id", corr.CartID)
	}
	return attrs
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "req-fallback"
	}
	return "req-" + hex.EncodeToString(buf)
}
