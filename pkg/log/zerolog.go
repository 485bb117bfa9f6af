package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	crdb "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ZerologLogger implements Logger on top of a zerolog.Logger.
type ZerologLogger struct {
	zl zerolog.Logger
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
// A nil writer logs to os.Stderr.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) { emit(l.zl.Info(), msg, fields) }

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) { emit(l.zl.Warn(), msg, fields) }

// Error implements Logger.Error.
func (l *ZerologLogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i < len(fields); i++ {
		if err, ok := fields[i].(error); ok {
			ctx = ctx.AnErr(ErrAttrKey, err)
			continue
		}
		if i+1 >= len(fields) {
			break
		}
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
		i++
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	zlevel := toZerologLevel(level)
	return zlevel >= l.zl.GetLevel() && zlevel >= zerolog.GlobalLevel()
}

// emit writes key-value pairs onto the event. A bare error in key position
// is accepted, matching the Error(msg, err, ...) call style.
func emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(fields); i++ {
		if err, ok := fields[i].(error); ok {
			addErr(ev, ErrAttrKey, err)
			continue
		}
		if i+1 >= len(fields) {
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			addErr(ev, key, v)
		case zerolog.LogObjectMarshaler:
			ev.Object(key, v)
		default:
			ev.Interface(key, v)
		}
		i++
	}
	ev.Msg(msg)
}

func addErr(ev *zerolog.Event, key string, err error) {
	ev.AnErr(key, err)
	if st := extractStacktrace(err); st != "" {
		ev.Str(StacktraceAttrKey, st)
	}
}

func extractStacktrace(err error) string {
	safeDetails := crdb.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider with zerolog loggers sharing one writer.
type ZerologProvider struct {
	mu    sync.RWMutex
	w     io.Writer
	level Level
}

var _ LoggerProvider = (*ZerologProvider)(nil)

// NewZerologProvider creates a provider writing to w (os.Stderr when nil).
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	return &ZerologProvider{w: w, level: level}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewZerologLogger(p.w, p.level)
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// WarnFunc returns a function suitable for errors.SetZerologWarnFunc.
// Warnings implementing zerolog.LogObjectMarshaler are logged with their fields.
func (p *ZerologProvider) WarnFunc() func(error) {
	return func(w error) {
		p.mu.RLock()
		zl := zerolog.New(p.w).Level(toZerologLevel(p.level)).With().Timestamp().Str(ComponentKey, "warnings").Logger()
		p.mu.RUnlock()

		ev := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	}
}
