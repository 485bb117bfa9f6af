// Package log provides testing utilities for structured logging.
//
// TestLogger records every emitted entry in memory so tests can assert on
// messages and fields without parsing a real log stream.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// testSink is shared by a TestLogger and every logger derived from it via With.
type testSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// TestLogger is a Logger that captures JSON lines in memory.
type TestLogger struct {
	sink   *testSink
	level  Level
	fields map[string]interface{}
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger creates a TestLogger with the given minimum level.
//
//	logger, buffer := log.NewTestLogger(log.LevelDebug)
//	logger.Info("test message", "key", "value")
//	_ = buffer.String()
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	sink := &testSink{}
	return &TestLogger{
		sink:   sink,
		level:  level,
		fields: make(map[string]interface{}),
	}, &sink.buf
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) { t.write(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) { t.write(LevelWarn, msg, fields) }

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) { t.write(LevelError, msg, fields) }

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	collect(merged, fields)
	return &TestLogger{sink: t.sink, level: t.level, fields: merged}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.level <= level
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := map[string]interface{}{
		"level":   level.String(),
		"message": msg,
	}
	for k, v := range t.fields {
		entry[k] = v
	}
	collect(entry, fields)

	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":%q,"message":%q,"marshal_error":%q}`, level.String(), msg, err.Error()))
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buf.Write(line)
	t.sink.buf.WriteByte('\n')
}

// collect flattens key-value pairs into dst. Errors are stored as strings.
func collect(dst map[string]interface{}, fields []any) {
	for i := 0; i < len(fields); i++ {
		if err, ok := fields[i].(error); ok {
			dst[ErrAttrKey] = err.Error()
			continue
		}
		if i+1 >= len(fields) {
			return
		}
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
		} else {
			dst[key] = fields[i+1]
		}
		i++
	}
}

// String returns everything captured so far.
func (t *TestLogger) String() string {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	return t.sink.buf.String()
}

// GetLogEntries parses the captured output into one map per line.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(t.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any entry contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.String(), message)
}

// ContainsField reports whether any entry has key set to value.
// JSON numbers decode as float64.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Clear drops all captured content.
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buf.Reset()
}

// TestLoggerProvider implements LoggerProvider for tests.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider creates a provider whose loggers share one buffer.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *TestLogger) {
	logger, _ := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, logger
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *TestLoggerProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.level = level
}
