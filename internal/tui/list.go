package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/shazow/wifictl/wifi"
)

const ssidColumnWidth = 30

// signalColor blends between the theme's low and high signal colors.
func signalColor(strength int) lipgloss.TerminalColor {
	start, err1 := colorful.Hex(hexColor(CurrentTheme.SignalLow))
	end, err2 := colorful.Hex(hexColor(CurrentTheme.SignalHigh))
	if err1 != nil || err2 != nil {
		return CurrentTheme.Normal
	}
	p := float64(max(0, min(strength, 100))) / 100.0
	return lipgloss.Color(start.BlendRgb(end, p).Clamped().Hex())
}

func securityIcon(s wifi.SecurityType) string {
	switch s {
	case wifi.SecurityNone:
		return CurrentTheme.NetworkOpenIcon
	case wifi.SecurityUnknown:
		return CurrentTheme.NetworkUnknownIcon
	}
	return CurrentTheme.NetworkSecureIcon
}

// itemDelegate is our custom list delegate
type itemDelegate struct {
	list.DefaultDelegate
}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(networkItem)
	if !ok {
		// Fallback to default render for any other item types
		d.DefaultDelegate.Render(w, m, index, listItem)
		return
	}

	title := []rune(securityIcon(i.Security) + i.Title())
	if len(title) > ssidColumnWidth {
		title = append(title[:ssidColumnWidth-1], '…')
	}
	padding := strings.Repeat(" ", ssidColumnWidth-len(title))

	var titleStyle lipgloss.Style
	switch {
	case i.connected:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success)
	case i.SSID == "":
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Disabled)
	default:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	}

	desc := lipgloss.NewStyle().Foreground(signalColor(i.SignalStrength)).Render(fmt.Sprintf("%4s", i.Description()))
	desc += lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(fmt.Sprintf("  ch %-3d %-7s", i.Channel, i.Security))
	if i.connected {
		desc += " (Connected)"
	}

	line := titleStyle.Render(string(title)) + padding + " " + desc
	if index == m.Index() {
		line = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render("▶ ") + line
	} else {
		line = "  " + line
	}
	fmt.Fprint(w, line)
}

// ListModel shows the scanned networks.
type ListModel struct {
	list    list.Model
	scanner *ScanSchedule
	status  wifi.ConnectionStatus
	ssid    string
}

func NewListModel(scanner *ScanSchedule) *ListModel {
	l := list.New([]list.Item{}, itemDelegate{}, 0, 0)
	l.Title = fmt.Sprintf("%-27s %s", CurrentTheme.TitleIcon+"WiFi Network", "Signal")
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
			key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "connect")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disconnect")),
			key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hotspot")),
		}
	}
	// Make 'q' the only quit key
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return append([]key.Binding{
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto scan")),
			key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
		}, l.AdditionalShortHelpKeys()...)
	}

	// Enable the fuzzy finder
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)

	return &ListModel{
		list:    l,
		scanner: scanner,
		status:  wifi.StatusDisconnected,
	}
}

func (m *ListModel) Init() tea.Cmd { return nil }

// IsConsumingInput returns whether the fuzzy finder owns the keyboard.
func (m *ListModel) IsConsumingInput() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *ListModel) Resize(width, height int) {
	h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
	listBorderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true)
	bh, bv := listBorderStyle.GetFrameSize()
	extraVerticalSpace := 4
	m.list.SetSize(width-h-bh, height-v-bv-extraVerticalSpace)
}

// SetNetworks replaces the list contents, keeping the cursor on the same
// network when it is still visible.
func (m *ListModel) SetNetworks(networks []wifi.NetworkInfo, status wifi.ConnectionStatus, ssid string) tea.Cmd {
	var selected string
	if i, ok := m.list.SelectedItem().(networkItem); ok {
		selected = i.BSSID
	}

	m.status = status
	m.ssid = ssid
	items := make([]list.Item, len(networks))
	cursor := 0
	for i, n := range networks {
		items[i] = networkItem{
			NetworkInfo: n,
			connected:   status == wifi.StatusConnected && ssid != "" && n.SSID == ssid,
		}
		if selected != "" && n.BSSID == selected {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(cursor)
	return cmd
}

// Selected returns the network under the cursor.
func (m *ListModel) Selected() (networkItem, bool) {
	i, ok := m.list.SelectedItem().(networkItem)
	return i, ok
}

func (m *ListModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.IsConsumingInput() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "s":
			return m, func() tea.Msg { return scanMsg{} }
		case "a":
			enabled, cmd := m.scanner.Toggle()
			status := "Auto scan off."
			if enabled {
				status = "Auto scan on."
			}
			return m, tea.Batch(cmd, func() tea.Msg { return actionDoneMsg(status) })
		case "d":
			return m, func() tea.Msg { return disconnectMsg{} }
		case "h":
			return m, func() tea.Msg { return refreshHotspotMsg{} }
		case "L":
			return m, func() tea.Msg { return showLogsMsg{} }
		case "c", "enter":
			selected, ok := m.Selected()
			if !ok || selected.SSID == "" {
				return m, nil
			}
			if !selected.IsSecure() {
				// Open networks get a null password rather than an empty one.
				return m, func() tea.Msg { return connectMsg{ssid: selected.SSID} }
			}
			return m, push(NewPasswordModel(selected.SSID, selected.Security))
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ListModel) View() string {
	var viewBuilder strings.Builder
	listBorderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(CurrentTheme.Border)
	viewBuilder.WriteString(listBorderStyle.Render(m.list.View()))

	// Custom status bar
	statusText := m.status.String()
	if m.ssid != "" {
		statusText += " to " + m.ssid
	}
	if len(m.list.Items()) > 0 {
		statusText = fmt.Sprintf("%d/%d  %s", m.list.Index()+1, len(m.list.Items()), statusText)
	}
	if m.scanner != nil && m.scanner.Interval() != ScanOff {
		statusText += fmt.Sprintf("  (scanning every %s)", m.scanner.Interval())
	}
	viewBuilder.WriteString("\n")
	viewBuilder.WriteString(statusText)
	return lipgloss.NewStyle().Margin(1, 2).Render(viewBuilder.String())
}
