package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

const (
	lineBufferSize  = 256
	timestampLayout = "2006-01-02T15:04:05-07:00"
)

// sink serializes writes from every handler derived from the same root.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// LineHandler is a slog.Handler writing one line per record:
//
//	2006-01-02T15:04:05-07:00 LEVEL message key=value key="quoted value"
type LineHandler struct {
	out   *sink
	level slog.Level
	// attrs holds attributes from WithAttrs, already rendered.
	attrs  []byte
	prefix string
}

// NewFileHandler opens path for appending and returns a handler writing to it.
func NewFileHandler(path string, level Level) (*LineHandler, error) {
	//nolint:gosec // path comes from configuration owned by the user
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions)
	if err != nil {
		return nil, err
	}

	return NewWriterHandler(f, level), nil
}

// NewWriterHandler returns a handler writing to w.
func NewWriterHandler(w io.Writer, level Level) *LineHandler {
	return &LineHandler{out: &sink{w: w}, level: level.ToSlogLevel()}
}

// Enabled implements slog.Handler.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, lineBufferSize)
	line = r.Time.Local().AppendFormat(line, timestampLayout)
	line = append(line, ' ')
	line = append(line, r.Level.String()...)
	line = append(line, ' ')
	line = append(line, r.Message...)
	line = append(line, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		line = appendAttr(line, h.prefix, a)

		return true
	})

	line = append(line, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	_, err := h.out.w.Write(line)

	return err
}

// WithAttrs implements slog.Handler.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	child := *h
	child.attrs = append([]byte(nil), h.attrs...)

	for _, a := range attrs {
		child.attrs = appendAttr(child.attrs, h.prefix, a)
	}

	return &child
}

// WithGroup implements slog.Handler. Group names prefix later keys.
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	child := *h
	child.prefix = h.prefix + name + "."

	return &child
}

// Close closes the destination when it is an io.Closer.
func (h *LineHandler) Close() error {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	if c, ok := h.out.w.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}

		for _, inner := range a.Value.Group() {
			buf = appendAttr(buf, group, inner)
		}

		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')

	val := a.Value.String()
	if needsQuoting(val) {
		return strconv.AppendQuote(buf, val)
	}

	return append(buf, val...)
}

func needsQuoting(s string) bool {
	return s == "" || strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r)
	}) >= 0
}
