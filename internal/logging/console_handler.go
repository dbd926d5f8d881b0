package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// consoleHandler renders compact, human-readable log lines:
//
//	15:04:05.000 INFO  [pipeline] dispatching batch batch_id=... files=3
type consoleHandler struct {
	// mu guards writer and is shared across WithAttrs/WithGroup clones so
	// derived loggers cannot interleave partial lines.
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	color  bool
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, color bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), writer: w, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var component string
	var kvs []slog.Attr
	collect := func(attr slog.Attr) {
		if attr.Key == FieldComponent && component == "" {
			component = attr.Value.String()
			return
		}
		if !attr.Equal(slog.Attr{}) {
			kvs = append(kvs, attr)
		}
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collect(attr)
		return true
	})

	var buf bytes.Buffer
	buf.Grow(128 + len(kvs)*24)

	h.dim(&buf, timestamp.Format("15:04:05.000"))
	buf.WriteByte(' ')
	h.levelTag(&buf, record.Level)
	buf.WriteByte(' ')
	if component != "" {
		h.dim(&buf, "["+component+"]")
		buf.WriteByte(' ')
	}
	buf.WriteString(record.Message)
	for _, attr := range kvs {
		buf.WriteByte(' ')
		h.dim(&buf, joinGroups(h.groups, attr.Key)+"=")
		fmt.Fprintf(&buf, "%v", attr.Value)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		mu:     h.mu,
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *consoleHandler) levelTag(buf *bytes.Buffer, level slog.Level) {
	var tag, color string
	switch {
	case level >= slog.LevelError:
		tag, color = "ERROR", ansiRed
	case level >= slog.LevelWarn:
		tag, color = "WARN ", ansiYellow
	case level >= slog.LevelInfo:
		tag, color = "INFO ", ansiCyan
	default:
		tag, color = "DEBUG", ansiDim
	}
	if h.color {
		buf.WriteString(color)
		buf.WriteString(tag)
		buf.WriteString(ansiReset)
		return
	}
	buf.WriteString(tag)
}

func (h *consoleHandler) dim(buf *bytes.Buffer, s string) {
	if h.color {
		buf.WriteString(ansiDim)
		buf.WriteString(s)
		buf.WriteString(ansiReset)
		return
	}
	buf.WriteString(s)
}

func joinGroups(groups []string, key string) string {
	if len(groups) == 0 {
		return key
	}
	joined := ""
	for _, g := range groups {
		joined += g + "."
	}
	return joined + key
}
