package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogMsg is one record for the log pane.
type LogMsg struct {
	Level   slog.Level
	Message string
}

// LogHandler is a slog.Handler that posts records to the UI log pane.
type LogHandler struct {
	bridge *Bridge
	level  slog.Leveler
	attrs  []slog.Attr
}

// NewLogHandler creates a handler posting through b. level may be a
// *slog.LevelVar to change verbosity at run time.
func NewLogHandler(b *Bridge, level slog.Leveler) *LogHandler {
	return &LogHandler{bridge: b, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	h.bridge.post(LogMsg{Level: r.Level, Message: b.String()})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &n
}

// WithGroup is a no-op: the pane shows flat key=value pairs.
func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}
