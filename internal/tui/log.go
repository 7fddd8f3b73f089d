package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	wifilog "github.com/shazow/wifictl/internal/log"
)

// LogViewModel shows the latest records kept by a TUIHandler.
type LogViewModel struct {
	handler *wifilog.TUIHandler
}

func NewLogViewModel(handler *wifilog.TUIHandler) *LogViewModel {
	return &LogViewModel{handler: handler}
}

func (m *LogViewModel) Init() tea.Cmd { return nil }

func (m *LogViewModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, pop
		}
	}
	// New records are read on the next View.
	return m, nil
}

func (m *LogViewModel) View() string {
	var s strings.Builder
	s.WriteString("Latest logs (press 'q' to return):\n\n")

	var logs []slog.Record
	if m.handler != nil {
		logs = m.handler.Logs()
	}
	for _, log := range logs {
		var style lipgloss.Style
		switch {
		case log.Level >= slog.LevelError:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
		case log.Level < slog.LevelInfo:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Subtle)
		default:
			style = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
		}
		s.WriteString(style.Render(fmt.Sprintf("%s [%s] %s", log.Time.Format("15:04:05"), log.Level, log.Message)))
		log.Attrs(func(a slog.Attr) bool {
			s.WriteString(style.Render(fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())))
			return true
		})
		s.WriteString("\n")
	}

	return lipgloss.NewStyle().Margin(1, 2).Render(s.String())
}

func (m *LogViewModel) Resize(width, height int) {}

func (m *LogViewModel) IsConsumingInput() bool { return false }
