package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel переводит LOG_LEVEL в slog.Level без учёта регистра.
// Пустое или неизвестное значение — INFO, ok=false для неизвестного.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "", "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// NewLogger собирает логгер с JSON-выводом или текстовым, если format == "text".
// На уровне DEBUG в записи добавляется источник.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetupLogger создаёт логгер процесса из LOG_LEVEL и LOG_FORMAT
// и делает его глобальным.
func SetupLogger() *slog.Logger {
	raw := os.Getenv("LOG_LEVEL")
	level, ok := ParseLevel(raw)

	logger := NewLogger(os.Stdout, level, os.Getenv("LOG_FORMAT"))
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("unknown LOG_LEVEL, using INFO", "value", raw)
	}
	return logger
}

type loggerKey struct{}

// WithLogger кладёт логгер запроса в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext достаёт логгер из контекста, иначе slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func WithWorkerID(logger *slog.Logger, workerID int64) *slog.Logger {
	return logger.With("worker_id", workerID)
}

func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}
