// Package log wraps go.uber.org/zap behind the keyval-style call
// convention used throughout this codebase (Info(msg, "key", val, ...)),
// mirroring the structured-logging idiom the teacher repo calls into at
// every store/writer boundary.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the keyval-style facade. The zero value is not usable; use New
// or Root.
type Logger struct {
	z *zap.SugaredLogger
}

var root = New(Options{})

// Options configures Root/New. A zero Options uses stderr only, info level.
type Options struct {
	FilePath   string // when set, also writes rotated JSON logs here
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

// New builds a Logger from Options.
func New(o Options) *Logger {
	level := zapcore.InfoLevel
	if o.Debug {
		level = zapcore.DebugLevel
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level),
	}

	if o.FilePath != "" {
		jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		rotator := &lumberjack.Logger{
			Filename:   o.FilePath,
			MaxSize:    orDefault(o.MaxSizeMB, 100),
			MaxBackups: orDefault(o.MaxBackups, 5),
			MaxAge:     orDefault(o.MaxAgeDays, 28),
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	return &Logger{z: zap.New(core).Sugar()}
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

// Root returns the process-wide default logger.
func Root() *Logger { return root }

// SetRoot replaces the process-wide default logger, e.g. once config is
// loaded.
func SetRoot(l *Logger) { root = l }

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Errorw(msg, kv...) }

// Sync flushes buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.z.Sync() }

// Package-level convenience functions delegate to Root().
func Debug(msg string, kv ...any) { root.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { root.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { root.Warn(msg, kv...) }
func Error(msg string, kv ...any) { root.Error(msg, kv...) }
