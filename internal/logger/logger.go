package logger

import "sync"

var (
	globalLogger Logger
	initOnce     sync.Once
)

// Logger is the structured logging contract used across the service. Request
// paths and the background sweeper log through it, so tests can swap in a
// no-op implementation.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field represents a json field in a log message
type Field struct {
	Key   string
	Value interface{}
}
