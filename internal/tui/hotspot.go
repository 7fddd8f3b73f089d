package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifictl/qrwifi"
	"github.com/shazow/wifictl/wifi"
)

// DefaultHotspotSSID is suggested when starting a hotspot.
const DefaultHotspotSSID = "wifictl"

// HotspotModel shows the access point state and starts or stops it.
type HotspotModel struct {
	state  HotspotState
	loaded bool
	input  textinput.Model
	qr     string
}

func NewHotspotModel(state HotspotState) *HotspotModel {
	ti := textinput.New()
	ti.Prompt = "SSID: "
	ti.CharLimit = 32
	ti.Width = 32
	ti.SetValue(DefaultHotspotSSID)
	m := &HotspotModel{input: ti}
	m.setState(state)
	return m
}

func (m *HotspotModel) setState(state HotspotState) {
	m.state = state
	m.loaded = true
	m.qr = ""
	if state.Active && state.SSID != "" {
		// Hotspots are always open, so the join code carries no password.
		if qr, err := qrwifi.Generate(state.SSID, "", wifi.SecurityNone, false); err == nil {
			m.qr = qr
		}
	}
	if state.Supported && !state.Active {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *HotspotModel) Init() tea.Cmd { return nil }

func (m *HotspotModel) IsConsumingInput() bool {
	return m.input.Focused()
}

func (m *HotspotModel) Resize(width, height int) {}

func (m *HotspotModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case hotspotStateMsg:
		m.setState(HotspotState(msg))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, pop
		case "q":
			if !m.input.Focused() {
				return m, pop
			}
		case "x":
			if m.state.Active {
				return m, func() tea.Msg { return stopHotspotMsg{} }
			}
		case "enter":
			if m.input.Focused() {
				ssid := strings.TrimSpace(m.input.Value())
				if ssid == "" {
					return m, nil
				}
				return m, func() tea.Msg { return startHotspotMsg{ssid: ssid} }
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *HotspotModel) View() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(CurrentTheme.HotspotIcon + "Hotspot"))
	s.WriteString("\n\n")

	subtle := lipgloss.NewStyle().Foreground(CurrentTheme.Subtle)
	switch {
	case !m.state.Supported:
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render("This backend cannot host a hotspot."))
		s.WriteString("\n\n")
		s.WriteString(subtle.Render("esc: back"))
	case m.state.Active:
		name := m.state.SSID
		if name == "" {
			name = "(started elsewhere)"
		}
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Success).Render("Active: " + name))
		s.WriteString("\n\n")
		if m.qr != "" {
			s.WriteString(m.qr)
			s.WriteString("\n")
		}
		s.WriteString(subtle.Render("x: stop • esc: back"))
	default:
		s.WriteString("Inactive. Start an open hotspot:\n\n")
		s.WriteString(m.input.View())
		s.WriteString("\n\n")
		s.WriteString(subtle.Render("enter: start • esc: back"))
	}

	return lipgloss.NewStyle().Margin(1, 2).Render(s.String())
}
