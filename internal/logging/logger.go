// Package logging configures hyperscore's two log streams: a leveled
// slog.Logger on stderr for operators, and a DecisionLogger that appends
// scoring decisions to .hyperscore/decisions.jsonl when debugging.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. Per-round propagation deltas log here.
const LevelTrace = slog.LevelDebug - 4

// DecisionsFile is the JSONL file name created inside the data directory.
const DecisionsFile = "decisions.jsonl"

// ParseLevel maps a level name to a slog.Level, case-insensitively.
// Anything unrecognized is treated as info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level  string
	Format string // "text" or "json"
	Writer io.Writer
}

// New builds an operational logger. A nil Writer means stderr.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: renameTrace,
	}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// NewLogger is shorthand for a text logger at the given level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return New(Options{Level: level, Writer: w})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func renameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// Decision is one line of decisions.jsonl. Fields that do not apply to an
// event are omitted.
type Decision struct {
	Time          time.Time          `json:"time"`
	Event         string             `json:"event"`
	Scenario      string             `json:"scenario,omitempty"`
	NodeID        string             `json:"node_id,omitempty"`
	FunctionPath  string             `json:"function_path,omitempty"`
	RunID         string             `json:"run_id,omitempty"`
	Functionality map[string]float64 `json:"functionality,omitempty"`
	Value         map[string]float64 `json:"value,omitempty"`
	MetaScore     *float64           `json:"meta_score,omitempty"`
	Iterations    int                `json:"iterations,omitempty"`
}

// DecisionLogger appends Decisions to a JSONL file. It is safe for
// concurrent use, and every method is a no-op on a nil receiver, so callers
// never need to check whether decision logging is enabled.
type DecisionLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
	now func() time.Time
}

// NewDecisionLogger opens dir/decisions.jsonl for append when level is debug
// or trace. At info and above, or if the file cannot be opened, it returns nil.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, DecisionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil
	}
	return &DecisionLogger{enc: json.NewEncoder(f), f: f, now: time.Now}
}

// Record writes d as a single line, stamping Time if it is zero.
func (dl *DecisionLogger) Record(d Decision) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.f == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = dl.now().UTC()
	}
	_ = dl.enc.Encode(d)
}

// Close releases the file. Later Record calls are dropped.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.f == nil {
		return
	}
	_ = dl.f.Close()
	dl.f = nil
	dl.enc = nil
}
