package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures every
// message instead of writing anywhere.
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage is one captured log entry
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new capturing test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		zerolog:  &nop,
	}
}

func (l *TestLogger) Debug(msg string) { l.capture("DEBUG", msg, nil, nil) }
func (l *TestLogger) Info(msg string)  { l.capture("INFO", msg, nil, nil) }
func (l *TestLogger) Warn(msg string)  { l.capture("WARN", msg, nil, nil) }
func (l *TestLogger) Error(msg string) { l.capture("ERROR", msg, nil, nil) }
func (l *TestLogger) Fatal(msg string) { l.capture("FATAL", msg, nil, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.capture("DEBUG", msg, fields, nil)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.capture("INFO", msg, fields, nil)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.capture("WARN", msg, fields, nil)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.capture("ERROR", msg, fields, nil)
}

// WithField returns a derived logger writing into the same capture buffer
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{root: l, fields: fields}
}

func (l *TestLogger) WithError(err error) Logger {
	return &testLoggerContext{root: l, err: err}
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

func (l *TestLogger) capture(level, msg string, fields map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	})
}

// Messages returns a copy of all captured log messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// HasMessage checks if a message containing the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range l.messages {
		if strings.Contains(msg.Message, text) {
			return true
		}
	}
	return false
}

// MessagesByLevel returns all captured messages of one level
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var filtered []LogMessage
	for _, msg := range l.messages {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// testLoggerContext carries bound fields or an error into the root capture
// buffer.
type testLoggerContext struct {
	root   *TestLogger
	fields map[string]interface{}
	err    error
}

func (c *testLoggerContext) Debug(msg string) { c.root.capture("DEBUG", msg, c.fields, c.err) }
func (c *testLoggerContext) Info(msg string)  { c.root.capture("INFO", msg, c.fields, c.err) }
func (c *testLoggerContext) Warn(msg string)  { c.root.capture("WARN", msg, c.fields, c.err) }
func (c *testLoggerContext) Error(msg string) { c.root.capture("ERROR", msg, c.fields, c.err) }
func (c *testLoggerContext) Fatal(msg string) { c.root.capture("FATAL", msg, c.fields, c.err) }

func (c *testLoggerContext) DebugWithFields(msg string, fields map[string]interface{}) {
	c.root.capture("DEBUG", msg, c.merge(fields), c.err)
}

func (c *testLoggerContext) InfoWithFields(msg string, fields map[string]interface{}) {
	c.root.capture("INFO", msg, c.merge(fields), c.err)
}

func (c *testLoggerContext) WarnWithFields(msg string, fields map[string]interface{}) {
	c.root.capture("WARN", msg, c.merge(fields), c.err)
}

func (c *testLoggerContext) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.root.capture("ERROR", msg, c.merge(fields), c.err)
}

func (c *testLoggerContext) WithField(key string, value interface{}) Logger {
	return c.WithFields(map[string]interface{}{key: value})
}

func (c *testLoggerContext) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{root: c.root, fields: c.merge(fields), err: c.err}
}

func (c *testLoggerContext) WithError(err error) Logger {
	return &testLoggerContext{root: c.root, fields: c.fields, err: err}
}

func (c *testLoggerContext) GetZerolog() *zerolog.Logger {
	return c.root.zerolog
}

func (c *testLoggerContext) merge(fields map[string]interface{}) map[string]interface{} {
	if c.fields == nil {
		return fields
	}
	merged := make(map[string]interface{}, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
