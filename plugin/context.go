package plugin

import (
	"context"
	"sync"

	"github.com/rohanthewiz/serr"
)

// Logger is the leveled logger handed to tools. Arguments after the message
// are alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Store is the object-storage facade handed to tools. Upload persists an
// object and returns a URL it can be fetched from; URL maps a path without
// writing anything.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	URL(path string) (string, error)
}

// Context carries everything one tool execution may consult. A fresh Context
// is built per invocation and never shared between executions, so tools can
// read it without locking.
type Context struct {
	ConversationID string
	UserID         string
	UserEmail      string
	DatasourceID   *string

	// Locale is already resolved against the plugin's declared locales.
	Locale string

	// ToolOptions are free-form platform hints, e.g. an API base URL
	// override for tests.
	ToolOptions map[string]string

	Config Values
	Env    map[string]string

	Logger Logger
	Store  Store
}

// EnvOr reads an env var with a fallback for when it is unset or empty.
func (pc *Context) EnvOr(key, fallback string) string {
	if v := pc.Env[key]; v != "" {
		return v
	}
	return fallback
}

// Option reads a tool option by key, "" when absent.
func (pc *Context) Option(key string) string {
	return pc.ToolOptions[key]
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// NopStore rejects uploads. Introspection contexts carry it so a misbehaving
// factory cannot persist anything.
type NopStore struct{}

func (NopStore) Upload(context.Context, string, []byte, string) (string, error) {
	return "", serr.New("no store is available in this context")
}

func (NopStore) URL(string) (string, error) {
	return "", serr.New("no store is available in this context")
}

// CaptureLogger records every call. Tests use it to assert what a tool
// logged, or that it logged nothing at all.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []CapturedLog
}

// CapturedLog is one recorded logger call.
type CapturedLog struct {
	Level string
	Msg   string
	KV    []any
}

func (l *CaptureLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, CapturedLog{Level: level, Msg: msg, KV: kv})
}

func (l *CaptureLogger) Debug(msg string, kv ...any) { l.record("debug", msg, kv) }
func (l *CaptureLogger) Info(msg string, kv ...any)  { l.record("info", msg, kv) }
func (l *CaptureLogger) Warn(msg string, kv ...any)  { l.record("warn", msg, kv) }
func (l *CaptureLogger) Error(msg string, kv ...any) { l.record("error", msg, kv) }

// Entries returns a copy of everything recorded so far.
func (l *CaptureLogger) Entries() []CapturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CapturedLog, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns how many calls were recorded.
func (l *CaptureLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
