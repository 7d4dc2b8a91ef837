// Package logging provides the harness log: an append-only, leveled,
// in-memory record of everything a run emitted.
//
// The entry list is the source of truth and is what Export serializes. A
// console sink (a *slog.Logger) receives a copy of every entry at or above the
// configured threshold; sink output never feeds back into the stored entries.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Sequence stamps entries with strictly increasing numbers.
type Sequence interface {
	Next() int64
}

// Clock is the default Sequence: a monotonic logical clock starting at 0.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Level is the severity of an entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lower-case level name used in exports.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// SlogLevel maps l onto the slog level used by the console sink.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Entry is one log record.
type Entry struct {
	Seq         int64          `json:"seq"`
	Timestamp   time.Time      `json:"-"`
	TimestampMS int64          `json:"timestamp_ms"`
	Level       Level          `json:"level"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
}

// Logger is the harness log. It is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	entries   []Entry
	seq       Sequence
	threshold Level
	sink      *slog.Logger
	now       func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithThreshold sets the minimum level emitted to the sink.
func WithThreshold(level Level) Option {
	return func(l *Logger) { l.threshold = level }
}

// WithSink replaces the console sink. A nil sink disables emission.
func WithSink(sink *slog.Logger) Option {
	return func(l *Logger) { l.sink = sink }
}

// WithSequence replaces the entry sequence source.
func WithSequence(seq Sequence) Option {
	return func(l *Logger) { l.seq = seq }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// New creates a Logger. By default it emits info and above to stderr.
func New(opts ...Option) *Logger {
	l := &Logger{
		threshold: LevelInfo,
		seq:       NewClock(),
		sink:      NewConsoleSink(os.Stderr),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewConsoleSink returns a text slog logger writing to w. Filtering happens in
// Logger, so the handler accepts every level.
func NewConsoleSink(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Discard returns a Logger that stores entries but emits nothing.
func Discard() *Logger {
	return New(WithSink(nil))
}

// Write appends an entry. kv are slog-style alternating key/value pairs and
// become the entry's Data; a trailing key without a value is stored under
// "!BADKEY" like slog does.
func (l *Logger) Write(level Level, msg string, kv ...any) {
	data := pairs(kv)

	l.mu.Lock()
	ts := l.now()
	l.entries = append(l.entries, Entry{
		Seq:         l.seq.Next(),
		Timestamp:   ts,
		TimestampMS: ts.UnixMilli(),
		Level:       level,
		Message:     msg,
		Data:        data,
	})
	emit := level >= l.threshold && l.sink != nil
	sink := l.sink
	l.mu.Unlock()

	if emit {
		sink.Log(context.Background(), level.SlogLevel(), msg, kv...)
	}
}

// Debug appends a debug entry.
func (l *Logger) Debug(msg string, kv ...any) { l.Write(LevelDebug, msg, kv...) }

// Info appends an info entry.
func (l *Logger) Info(msg string, kv ...any) { l.Write(LevelInfo, msg, kv...) }

// Warn appends a warn entry.
func (l *Logger) Warn(msg string, kv ...any) { l.Write(LevelWarn, msg, kv...) }

// Error appends an error entry.
func (l *Logger) Error(msg string, kv ...any) { l.Write(LevelError, msg, kv...) }

// Entries returns a copy of the stored entries in emission order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of stored entries.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Threshold returns the emission threshold.
func (l *Logger) Threshold() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.threshold
}

// Clear drops every stored entry. The threshold and the sequence counter are
// left untouched, so entries written after Clear keep increasing Seq values.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Export serializes the stored entries as an indented JSON array in emission
// order. An empty log exports as "[]".
func (l *Logger) Export() ([]byte, error) {
	return MarshalEntries(l.Entries())
}

// MarshalEntries serializes entries the same way Export does.
func MarshalEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // messages must round-trip verbatim
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("export log entries: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseExport decodes a document produced by Export.
func ParseExport(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse log export: %w", err)
	}
	for i := range entries {
		entries[i].Timestamp = time.UnixMilli(entries[i].TimestampMS)
	}
	return entries, nil
}

func pairs(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	data := make(map[string]any, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || i+1 >= len(kv) {
			data["!BADKEY"] = kv[i]
			continue
		}
		data[key] = kv[i+1]
	}
	return data
}
