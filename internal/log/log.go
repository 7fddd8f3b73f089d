// Package log wires log/slog for the command line and the TUI.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// maxRecords bounds the ring buffer shown in the TUI log view.
const maxRecords = 20

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewHandler returns a text or json handler writing to w.
func NewHandler(w io.Writer, level slog.Leveler, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// OpenFile truncates path and returns it for use as a handler's writer. The
// TUI owns the terminal, so this is where its logs go when requested.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ring is shared by a TUIHandler and every handler derived from it.
type ring struct {
	mu   sync.Mutex
	ch   chan<- tea.Msg
	logs []slog.Record
}

// TUIHandler is a slog.Handler that keeps the latest records and forwards
// them to a tea.Program.
type TUIHandler struct {
	slog.Handler
	ring *ring
}

// NewTUIHandler creates a new TUIHandler.
func NewTUIHandler(handler slog.Handler, ch chan<- tea.Msg) *TUIHandler {
	return &TUIHandler{
		Handler: handler,
		ring:    &ring{ch: ch},
	}
}

// Handle stores the record and sends it to the TUI without blocking.
func (h *TUIHandler) Handle(ctx context.Context, r slog.Record) error {
	h.ring.mu.Lock()
	h.ring.logs = append(h.ring.logs, r.Clone())
	if len(h.ring.logs) > maxRecords {
		h.ring.logs = h.ring.logs[1:]
	}
	if h.ring.ch != nil {
		select {
		case h.ring.ch <- LogMsg(r):
		default:
		}
	}
	h.ring.mu.Unlock()

	if !h.Handler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

// Enabled reports true for everything so the log view sees debug records
// even when the wrapped handler filters them.
func (h *TUIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *TUIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithAttrs(attrs), ring: h.ring}
}

func (h *TUIHandler) WithGroup(name string) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithGroup(name), ring: h.ring}
}

// Logs returns a copy of the stored log records.
func (h *TUIHandler) Logs() []slog.Record {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	return append([]slog.Record(nil), h.ring.logs...)
}

// SetOutput sets the output channel for the handler.
func (h *TUIHandler) SetOutput(ch chan<- tea.Msg) {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.ch = ch
}

// LogMsg is a tea.Msg that represents a log message.
type LogMsg slog.Record
