// Package logger глобальный slog логгер сервиса с ротацией файлов через
// lumberjack и привязкой записей к запросу и трейсу.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultFilePath = "logs/report-svc.log"

// Log глобальный логгер. До Init пишет JSON в stdout.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// file открытый файл ротации, закрывается в Close
var file *lumberjack.Logger

type requestIDKey struct{}

type Config struct {
	Writer     io.Writer // имеет приоритет над Output
	Level      string
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init JSON в stdout с заданным уровнем
func Init(level string) {
	InitWithConfig(Config{Level: level})
}

// InitWithConfig заменяет глобальный логгер и slog.Default
func InitWithConfig(cfg Config) {
	_ = Close()

	w := output(cfg)
	if lj, ok := w.(*lumberjack.Logger); ok {
		file = lj
	}
	Log = slog.New(newHandler(w, cfg))
	slog.SetDefault(Log)
}

// New логгер по конфигурации без замены глобального
func New(cfg Config) *slog.Logger {
	return slog.New(newHandler(output(cfg), cfg))
}

// Close закрывает файл логов, если вывод шёл в файл
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// ParseLevel "debug", "WARN", "error+2"; всё нераспознанное даёт info
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func output(cfg Config) io.Writer {
	switch {
	case cfg.Writer != nil:
		return cfg.Writer
	case cfg.Output == "stderr":
		return os.Stderr
	case cfg.Output == "file":
		path := cfg.FilePath
		if path == "" {
			path = defaultFilePath
		}
		// каталог lumberjack создаёт сам при первой записи
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	default:
		return os.Stdout
	}
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	lvl := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}
	if cfg.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext логгер с request_id и trace_id/span_id активного спана
func WithContext(ctx context.Context, args ...any) *slog.Logger {
	l := Log
	if ctx == nil {
		return l.With(args...)
	}

	attrs := make([]any, 0, 6+len(args))
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	attrs = append(attrs, args...)
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Fatal пишет ошибку и завершает процесс с кодом 1
func Fatal(msg string, args ...any) {
	Log.Error(msg, args...)
	_ = Close()
	os.Exit(1)
}
