package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the minimum level that is written.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogFormat represents the output encoding.
type LogFormat string

const (
	// JSONFormat outputs one JSON object per entry.
	JSONFormat LogFormat = "json"
	// TextFormat outputs human-readable console lines.
	TextFormat LogFormat = "text"
)

var zapLevels = map[LogLevel]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
}

// Config holds configuration for the logger.
type Config struct {
	Level  LogLevel
	Format LogFormat
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Environment, when set, are stamped on every entry.
	Service     string
	Environment string
}

// DefaultConfig returns info level JSON logging on stdout.
func DefaultConfig() Config {
	return Config{
		Level:  InfoLevel,
		Format: JSONFormat,
	}
}

// ZapLogger is a Logger backed by a zap sugared logger.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a ZapLogger. Unknown levels fall back to info.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level := toZapLevel(cfg.Level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case TextFormat:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case JSONFormat, "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	var fields []zap.Field
	if cfg.Service != "" {
		fields = append(fields, zap.String("service", cfg.Service))
	}
	if cfg.Environment != "" {
		fields = append(fields, zap.String("environment", cfg.Environment))
	}
	if len(fields) > 0 {
		opts = append(opts, zap.Fields(fields...))
	}

	base := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), level), opts...)
	return &ZapLogger{base: base, sugar: base.Sugar()}, nil
}

func toZapLevel(level LogLevel) zapcore.Level {
	if l, ok := zapLevels[level]; ok {
		return l
	}
	return zapcore.InfoLevel
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// With creates a child logger with additional key-value pairs.
func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{base: l.base, sugar: l.sugar.With(args...)}
}

// WithContext attaches the request ID carried by ctx, if any.
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return l.With("request_id", requestID)
	}
	return l
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

// ParseLogLevel accepts a level name in any case; "warning" is an alias of warn.
func ParseLogLevel(level string) (LogLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = string(WarnLevel)
	}
	if _, ok := zapLevels[LogLevel(normalized)]; !ok {
		return "", fmt.Errorf("invalid log level: %s", level)
	}
	return LogLevel(normalized), nil
}

// ParseLogFormat accepts json, text or console (an alias of text).
func ParseLogFormat(format string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONFormat, nil
	case "text", "console":
		return TextFormat, nil
	default:
		return "", fmt.Errorf("invalid log format: %s", format)
	}
}
