package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerboseChecker interface for checking verbose state
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger provides structured logging with verbose support
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	base           *zap.Logger
	zl             *zap.Logger
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

var (
	baseOnce sync.Once
	base     *zap.Logger
)

// defaultBase writes console-encoded lines to stderr. Level gating happens
// in Logger so the zap core accepts everything.
func defaultBase() *zap.Logger {
	baseOnce.Do(func() {
		base = newZap(os.Stderr)
	})
	return base
}

func newZap(w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeCaller = nil
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// New creates a new logger instance
func New(component string, verboseChecker VerboseChecker) *Logger {
	return newLogger(component, verboseChecker, defaultBase())
}

func newLogger(component string, verboseChecker VerboseChecker, base *zap.Logger) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		base:           base,
		zl:             base.Named(componentName(component)),
	}
}

// NewWithCallback creates a new logger instance with a callback function
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, &callbackChecker{callback: verboseCheck})
}

// NewWithWriter creates a logger that writes to w instead of stderr
func NewWithWriter(component string, verboseChecker VerboseChecker, w io.Writer) *Logger {
	return newLogger(component, verboseChecker, newZap(w))
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return newLogger("nop", nil, zap.NewNop())
}

// WithComponent creates a logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return newLogger(component, l.verboseChecker, l.base)
}

// Zap exposes the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func componentName(component string) string {
	if component == "" {
		return "main"
	}
	return component
}

// callbackChecker implements VerboseChecker with a callback function
type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

func (l *Logger) verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...any) {
	if l.verbose() {
		l.zl.Debug(format(msg, args))
	}
}

// Info logs informational messages (only when verbose=true)
func (l *Logger) Info(msg string, args ...any) {
	if l.verbose() {
		l.zl.Info(format(msg, args))
	}
}

// Warn logs warning messages (always shown)
func (l *Logger) Warn(msg string, args ...any) {
	l.zl.Warn(format(msg, args))
}

// Error logs error messages (always shown)
func (l *Logger) Error(msg string, args ...any) {
	l.zl.Error(format(msg, args))
}

// DebugWithFields logs debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...any) {
	if l.verbose() {
		l.zl.Debug(format(msg, args), zapFields(fields)...)
	}
}

// InfoWithFields logs info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...any) {
	if l.verbose() {
		l.zl.Info(format(msg, args), zapFields(fields)...)
	}
}

// WarnWithFields logs warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields []Field, args ...any) {
	l.zl.Warn(format(msg, args), zapFields(fields)...)
}

// ErrorWithFields logs error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields []Field, args ...any) {
	l.zl.Error(format(msg, args), zapFields(fields)...)
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// Helper functions for common field types
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
