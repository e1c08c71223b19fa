package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSize    = 500
	defaultMaxAge     = 28
	defaultMaxBackups = 0
)

type LoggerKey struct{}

func NewContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey{}, logger)
}

func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return New(zap.DebugLevel, "", false)
}

type options struct {
	maxSize    int
	maxBackups int
}

type OptionFunc func(*options)

// WithRotation sets the size (in MB) at which the log file is rotated and
// how many rotated files are kept. Zero backups keeps all of them.
func WithRotation(maxSizeMB, maxBackups int) OptionFunc {
	return func(o *options) {
		if maxSizeMB > 0 {
			o.maxSize = maxSizeMB
		}
		if maxBackups >= 0 {
			o.maxBackups = maxBackups
		}
	}
}

// New creates a logger writing to stdout at the given level and, if
// logFileName is not empty, to a rotated log file at debug level.
func New(level zapcore.LevelEnabler, logFileName string, json bool, opts ...OptionFunc) *zap.Logger {
	o := options{maxSize: defaultMaxSize, maxBackups: defaultMaxBackups}
	for _, opt := range opts {
		opt(&o)
	}

	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)}
	if logFileName != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   logFileName,
			MaxSize:    o.maxSize,
			MaxBackups: o.maxBackups,
			MaxAge:     defaultMaxAge,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(fileLogger), zap.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}
