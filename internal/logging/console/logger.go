// Package console writes key=value log lines for local development and the CLI.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Level is the severity attached to a line.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configuration value such as "warn" onto a Level.
// Unknown or empty values resolve to LevelInfo.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Options configures the console provider. Zero values write to stdout at
// LevelInfo using the wall clock.
type Options struct {
	Writer   io.Writer
	Now      func() time.Time
	MinLevel Level
}

type sink struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	level Level
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
}

type provider struct {
	sink *sink
}

// NewProvider returns a LoggerProvider that formats entries as
// "<time> <LEVEL> <event> key=value ..." with keys sorted.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.Now, level: opts.MinLevel}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return &provider{sink: s}
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	fields := map[string]any{}
	if name = strings.TrimSpace(name); name != "" {
		fields["logger"] = name
	}
	return &logger{sink: p.sink, fields: fields}
}

type logger struct {
	sink   *sink
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.emit(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.emit(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.emit(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.emit(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.emit(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return &logger{sink: l.sink, fields: merged, ctx: l.ctx}
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{sink: l.sink, fields: l.fields, ctx: ctx}
}

func (l *logger) emit(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.level {
		return
	}

	fields := make(map[string]any, len(l.fields)+len(args)/2)
	maps.Copy(fields, l.fields)
	maps.Copy(fields, logging.ContextFields(l.ctx))
	pairs(fields, args)

	l.sink.write(format(l.sink.now().UTC(), level, msg, fields) + "\n")
}

// pairs folds alternating key/value arguments into fields. Non-string keys and
// a trailing value without a key are stored under "arg<N>".
func pairs(fields map[string]any, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields["arg"+strconv.Itoa(i)] = args[i]
			return
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(i)
		}
		fields[key] = args[i+1]
	}
}

func format(ts time.Time, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(render(fields[key]))
	}
	return b.String()
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case error:
		return quote(v.Error())
	case fmt.Stringer:
		return quote(v.String())
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsFunc(value, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(value)
	}
	return value
}
