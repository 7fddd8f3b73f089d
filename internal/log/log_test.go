package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Debug("hidden")
	logger.Info("scan", "count", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scan", line["msg"])
	assert.Equal(t, float64(2), line["count"])

	buf.Reset()
	h, err = NewHandler(&buf, slog.LevelDebug, "text")
	require.NoError(t, err)
	slog.New(h).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestTUIHandler(t *testing.T) {
	var buf bytes.Buffer
	inner, err := NewHandler(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)

	ch := make(chan tea.Msg, 1)
	h := NewTUIHandler(inner, ch)
	logger := slog.New(h).With("backend", "mock")

	logger.Debug("debug only in the ring")
	logger.Info("connected", "ssid", "Cafe")

	logs := h.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "connected", logs[1].Message)

	// The wrapped handler still filters by level.
	assert.NotContains(t, buf.String(), "debug only")
	assert.Contains(t, buf.String(), "backend=mock")

	// The channel is full after the first record; later sends are dropped.
	msg := <-ch
	assert.Equal(t, "debug only in the ring", slog.Record(msg.(LogMsg)).Message)
	assert.Empty(t, ch)
}

func TestTUIHandlerRing(t *testing.T) {
	h := NewTUIHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), nil)
	logger := slog.New(h)
	for i := 0; i < maxRecords+5; i++ {
		logger.Info("tick", "i", i)
	}
	logs := h.Logs()
	require.Len(t, logs, maxRecords)

	var first int64
	logs[0].Attrs(func(a slog.Attr) bool {
		first = a.Value.Int64()
		return false
	})
	assert.Equal(t, int64(5), first)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wifictl.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("hello\n")
	assert.NoError(t, err)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
