package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shazow/wifictl/wifi"
)

// Component is the interface for a TUI view on the stack.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string
	Resize(width, height int)
	// IsConsumingInput reports whether printable keys belong to the component,
	// so global shortcuts must not fire.
	IsConsumingInput() bool
}

// networkItem holds the information for a single network in our list
type networkItem struct {
	wifi.NetworkInfo
	connected bool
}

func (i networkItem) Title() string {
	if i.SSID == "" {
		return "(hidden " + i.BSSID + ")"
	}
	return i.SSID
}

func (i networkItem) Description() string {
	if i.SignalStrength > 0 {
		return fmt.Sprintf("%d%%", i.SignalStrength)
	}
	return ""
}

func (i networkItem) FilterValue() string { return i.SSID }

// Bubbletea messages are used to communicate between the main loop and commands
type (
	// From the session
	networksLoadedMsg struct {
		networks []wifi.NetworkInfo
		status   wifi.ConnectionStatus
		ssid     string
	}
	hotspotStateMsg HotspotState
	actionDoneMsg   string
	errorMsg        struct{ err error }

	// To the main model
	scanMsg    struct{}
	connectMsg struct {
		ssid     string
		password *string
	}
	disconnectMsg     struct{}
	startHotspotMsg   struct{ ssid string }
	stopHotspotMsg    struct{}
	refreshHotspotMsg struct{}
	showLogsMsg       struct{}

	// Stack navigation
	pushViewMsg struct{ c Component }
	popViewMsg  struct{}
)

func push(c Component) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{c} }
}

func pop() tea.Msg { return popViewMsg{} }

// --- Commands that interact with the session ---

func scanNetworks(s *Session) tea.Cmd {
	return func() tea.Msg {
		networks, err := s.Scan()
		if err != nil {
			return errorMsg{err}
		}
		status, ssid, err := s.Status()
		if err != nil {
			return errorMsg{err}
		}
		return networksLoadedMsg{networks: networks, status: status, ssid: ssid}
	}
}

func connectNetwork(s *Session, ssid string, password *string) tea.Cmd {
	return func() tea.Msg {
		if err := s.Connect(ssid, password); err != nil {
			return errorMsg{err}
		}
		return actionDoneMsg(fmt.Sprintf("Connected to '%s'.", ssid))
	}
}

func disconnect(s *Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.Disconnect(); err != nil {
			return errorMsg{err}
		}
		return actionDoneMsg("Disconnected.")
	}
}

func loadHotspot(s *Session) tea.Cmd {
	return func() tea.Msg {
		state, err := s.Hotspot()
		if err != nil {
			return errorMsg{err}
		}
		return hotspotStateMsg(state)
	}
}

func startHotspot(s *Session, ssid string) tea.Cmd {
	return func() tea.Msg {
		state, err := s.StartHotspot(ssid)
		if err != nil {
			return errorMsg{err}
		}
		return hotspotStateMsg(state)
	}
}

func stopHotspot(s *Session) tea.Cmd {
	return func() tea.Msg {
		state, err := s.StopHotspot()
		if err != nil {
			return errorMsg{err}
		}
		return hotspotStateMsg(state)
	}
}
