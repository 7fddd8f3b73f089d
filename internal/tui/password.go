package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shazow/wifictl/wifi"
)

// PasswordModel prompts for the passphrase of a secured network.
type PasswordModel struct {
	ssid     string
	security wifi.SecurityType
	input    textinput.Model
	width    int
}

func NewPasswordModel(ssid string, security wifi.SecurityType) *PasswordModel {
	ti := textinput.New()
	ti.Placeholder = "passphrase"
	ti.CharLimit = 64
	ti.Width = 30
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()
	return &PasswordModel{ssid: ssid, security: security, input: ti}
}

func (m *PasswordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *PasswordModel) IsConsumingInput() bool { return true }

func (m *PasswordModel) Resize(width, height int) {
	m.width = width
}

func (m *PasswordModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, pop
		case "enter":
			// An empty field is still sent as an empty passphrase, not as a
			// missing one.
			password := m.input.Value()
			ssid := m.ssid
			return m, tea.Batch(pop, func() tea.Msg {
				return connectMsg{ssid: ssid, password: &password}
			})
		case "ctrl+r":
			if m.input.EchoMode == textinput.EchoPassword {
				m.input.EchoMode = textinput.EchoNormal
			} else {
				m.input.EchoMode = textinput.EchoPassword
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *PasswordModel) View() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(
		fmt.Sprintf("Join '%s' (%s)", m.ssid, m.security)))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render("enter: connect • ctrl+r: reveal • esc: cancel"))

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Primary).
		Padding(1, 2).
		Render(s.String())
	return lipgloss.NewStyle().Margin(1, 2).Render(dialog)
}
