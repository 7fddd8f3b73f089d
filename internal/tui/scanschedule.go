package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	ScanOff  = 0
	ScanFast = 5 * time.Second
	ScanSlow = 20 * time.Second
)

// ScanSchedule triggers scans at a regular interval while enabled.
type ScanSchedule struct {
	callback func() tea.Msg
	interval time.Duration
	// generation invalidates ticks scheduled under a previous interval.
	generation int
}

// NewScanSchedule creates a new ScanSchedule, initially off.
func NewScanSchedule(callback func() tea.Msg) *ScanSchedule {
	return &ScanSchedule{
		callback: callback,
	}
}

// Interval returns the current interval, ScanOff when disabled.
func (s *ScanSchedule) Interval() time.Duration {
	return s.interval
}

// Toggle switches between ScanOff and ScanFast.
func (s *ScanSchedule) Toggle() (bool, tea.Cmd) {
	if s.interval == ScanOff {
		return true, s.SetSchedule(ScanFast)
	}
	return false, s.SetSchedule(ScanOff)
}

// SetSchedule sets the scan interval. Turning the schedule on scans
// immediately.
func (s *ScanSchedule) SetSchedule(interval time.Duration) tea.Cmd {
	if interval == s.interval {
		return nil
	}
	isStarting := s.interval == ScanOff
	s.interval = interval
	s.generation++

	if interval == ScanOff {
		return nil
	}
	if isStarting {
		return tea.Batch(s.callback, s.tick())
	}
	return s.tick()
}

// Update handles messages for the ScanSchedule.
func (s *ScanSchedule) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(tickMsg)
	if !ok || s.interval == ScanOff || tick.generation != s.generation {
		return nil
	}
	// When we get a tick, call the callback and then schedule the next tick.
	return tea.Batch(s.callback, s.tick())
}

// internal message to trigger a tick
type tickMsg struct{ generation int }

func (s *ScanSchedule) tick() tea.Cmd {
	generation := s.generation
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}
