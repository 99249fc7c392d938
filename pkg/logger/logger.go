package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides a structured logging interface
type Logger struct {
	*zap.SugaredLogger
}

// New creates a new logger with the given name that writes to
// logs/<name>_<date>.log and to stdout
func New(name string) *Logger {
	return NewInDir("logs", name)
}

// NewInDir is New with an explicit log directory
func NewInDir(dir, name string) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zap.InfoLevel,
	)

	cores := []zapcore.Core{consoleCore}

	// The file core is optional; a read-only working directory only loses the file output
	if fileWriter, err := openLogFile(dir, name); err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
	} else {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(fileWriter),
			zap.InfoLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(name)

	return &Logger{
		SugaredLogger: logger.Sugar(),
	}
}

// FromZap wraps an existing zap logger
func FromZap(log *zap.Logger) *Logger {
	return &Logger{SugaredLogger: log.Sugar()}
}

func openLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102")
	logFile := filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, timestamp))

	return os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}
