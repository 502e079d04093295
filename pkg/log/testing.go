package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// sink is the buffer shared by a TestLogger and every logger derived from it
// with With, so fold workers writing concurrently land in one place.
type sink struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (s *sink) write(entry map[string]interface{}) {
	line, _ := json.Marshal(entry)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(line)
	s.buf.WriteByte('\n')
}

func (s *sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// TestLogger records every entry as one JSON line so tests can assert on
// messages and fields.
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	runner := outcome.NewRunner(cfg, logger)
//	...
//	logger.ContainsMessage("* Training model on all the data...")
type TestLogger struct {
	out    *sink
	level  Level
	fields map[string]interface{}
}

// NewTestLogger returns a logger that drops entries below level, and the
// buffer it writes to.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &TestLogger{
		out:    &sink{buf: buf},
		level:  level,
		fields: map[string]interface{}{},
	}, buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.log(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.log(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.log(LevelWarn, msg, fields) }

// Error records fields[0] under "error" when it is an error, matching
// ZerologLogger.Error.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{"error", err}, fields[1:]...)
		}
	}
	t.log(LevelError, msg, fields)
}

func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	putPairs(merged, fields)
	return &TestLogger{out: t.out, level: t.level, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

func (t *TestLogger) log(level Level, msg string, fields []any) {
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
	putPairs(entry, fields)
	t.out.write(entry)
}

// putPairs copies key/value pairs into dst; errors are stored as their text.
func putPairs(dst map[string]interface{}, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
			continue
		}
		dst[key] = fields[i+1]
	}
}

// GetLogEntries decodes the recorded lines. JSON numbers come back as float64.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(t.out.String(), "\n") {
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

// ContainsMessage reports whether message appears anywhere in the output.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.out.String(), message)
}

// ContainsField reports whether some entry has key set to value.
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

// Clear drops everything recorded so far.
func (t *TestLogger) Clear() {
	t.out.mu.Lock()
	defer t.out.mu.Unlock()
	t.out.buf.Reset()
}
