// Package tui is the interactive terminal frontend.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	wifilog "github.com/shazow/wifictl/internal/log"
)

// The main model for our TUI application
type model struct {
	stack   *ComponentStack
	list    *ListModel
	scanner *ScanSchedule
	session *Session
	logs    *wifilog.TUIHandler

	spinner       spinner.Model
	loading       bool
	statusMessage string
}

// NewModel creates the starting state of our application. logs may be nil.
func NewModel(session *Session, logs *wifilog.TUIHandler) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	scanner := NewScanSchedule(func() tea.Msg { return scanMsg{} })
	list := NewListModel(scanner)

	return &model{
		stack:         NewComponentStack(list),
		list:          list,
		scanner:       scanner,
		session:       session,
		logs:          logs,
		spinner:       s,
		loading:       true,
		statusMessage: "Scanning for networks...",
	}
}

// Init is the first command that is run when the program starts
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.stack.Top().Init(), scanNetworks(m.session))
}

func (m *model) setLoading(status string) {
	m.loading = true
	m.statusMessage = status
}

// Update handles all incoming messages and updates the model accordingly
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.stack.Resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		return m, m.scanner.Update(msg)

	case pushViewMsg:
		return m, m.stack.Push(msg.c)
	case popViewMsg:
		m.stack.Pop()
		return m, nil

	case errorMsg:
		m.loading = false
		m.statusMessage = ""
		return m, m.stack.Push(NewErrorModel(msg.err))
	case actionDoneMsg:
		m.loading = false
		m.statusMessage = string(msg)
		return m, scanNetworks(m.session)
	case networksLoadedMsg:
		if m.loading && strings.HasPrefix(m.statusMessage, "Scanning") {
			m.loading = false
			m.statusMessage = fmt.Sprintf("Found %d networks.", len(msg.networks))
		}
		return m, m.list.SetNetworks(msg.networks, msg.status, msg.ssid)

	case scanMsg:
		if !m.loading {
			m.setLoading("Scanning for networks...")
		}
		return m, scanNetworks(m.session)
	case connectMsg:
		m.setLoading(fmt.Sprintf("Connecting to '%s'...", msg.ssid))
		return m, connectNetwork(m.session, msg.ssid, msg.password)
	case disconnectMsg:
		m.setLoading("Disconnecting...")
		return m, disconnect(m.session)

	case refreshHotspotMsg:
		m.setLoading("Checking hotspot...")
		return m, loadHotspot(m.session)
	case startHotspotMsg:
		m.setLoading(fmt.Sprintf("Starting hotspot '%s'...", msg.ssid))
		return m, startHotspot(m.session, msg.ssid)
	case stopHotspotMsg:
		m.setLoading("Stopping hotspot...")
		return m, stopHotspot(m.session)
	case hotspotStateMsg:
		m.loading = false
		m.statusMessage = ""
		if _, ok := m.stack.Top().(*HotspotModel); !ok {
			return m, m.stack.Push(NewHotspotModel(HotspotState(msg)))
		}

	case showLogsMsg:
		return m, m.stack.Push(NewLogViewModel(m.logs))
	case wifilog.LogMsg:
		// Records are read from the handler when the log view renders.
		return m, nil
	}

	return m, m.stack.Update(msg)
}

// View renders the UI based on the current model state
func (m *model) View() string {
	var s strings.Builder
	s.WriteString(m.stack.View())

	statusStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	if m.loading {
		s.WriteString(fmt.Sprintf("\n%s %s", m.spinner.View(), statusStyle.Render(m.statusMessage)))
	} else if m.statusMessage != "" {
		s.WriteString(fmt.Sprintf("\n%s", statusStyle.Render(m.statusMessage)))
	}

	return s.String()
}

// Run starts the TUI and blocks until the user quits. When logs is not nil
// its records are shown in the log view.
func Run(session *Session, logs *wifilog.TUIHandler) error {
	m := NewModel(session, logs)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if logs != nil {
		ch := make(chan tea.Msg, 16)
		logs.SetOutput(ch)
		done := make(chan struct{})
		defer func() {
			logs.SetOutput(nil)
			close(done)
		}()
		go func() {
			for {
				select {
				case msg := <-ch:
					p.Send(msg)
				case <-done:
					return
				}
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
