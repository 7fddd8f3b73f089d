package tui

import (
	"fmt"
	"sync"

	"github.com/shazow/wifictl/wifi"
)

// Session serializes access to a wifi.WiFi so tea commands, which run on
// their own goroutines, never overlap on the backend handle.
type Session struct {
	mu   sync.Mutex
	wifi *wifi.WiFi

	// connected is the ssid of the last successful Connect made through this
	// session. The backend only reports link status, not which network.
	connected string
	hotspot   string
}

// NewSession wraps w. The caller keeps ownership of w and closes it.
func NewSession(w *wifi.WiFi) *Session {
	return &Session{wifi: w}
}

// Scan returns the visible networks sorted by signal.
func (s *Session) Scan() ([]wifi.NetworkInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	networks, err := s.wifi.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	wifi.SortNetworks(networks)
	return networks, nil
}

// Connect joins ssid. A false result from the backend becomes an error
// wrapping wifi.ErrOperationFailed.
func (s *Session) Connect(ssid string, password *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.wifi.Connect(ssid, password)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to connect to %q: %w", ssid, wifi.ErrOperationFailed)
	}
	s.connected = ssid
	return nil
}

func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.wifi.Disconnect()
	if err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to disconnect: %w", wifi.ErrOperationFailed)
	}
	s.connected = ""
	return nil
}

// Status returns the link status and, when connected through this session,
// the network name.
func (s *Session) Status() (wifi.ConnectionStatus, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, err := s.wifi.Status()
	if err != nil {
		return status, "", err
	}
	if status != wifi.StatusConnected {
		return status, "", nil
	}
	return status, s.connected, nil
}

// HotspotState is a snapshot of the backend's access point.
type HotspotState struct {
	Supported bool
	Active    bool
	// SSID is known only for hotspots started through this session.
	SSID string
}

func (s *Session) Hotspot() (HotspotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotspotState()
}

func (s *Session) hotspotState() (HotspotState, error) {
	supported, err := s.wifi.IsHotspotSupported()
	if err != nil {
		return HotspotState{}, err
	}
	active, err := s.wifi.IsHotspotActive()
	if err != nil {
		return HotspotState{}, err
	}
	state := HotspotState{Supported: supported, Active: active}
	if active {
		state.SSID = s.hotspot
	}
	return state, nil
}

// StartHotspot creates an open access point named ssid.
func (s *Session) StartHotspot(ssid string) (HotspotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.wifi.CreateHotspot(ssid)
	if err != nil {
		return HotspotState{}, fmt.Errorf("failed to create hotspot: %w", err)
	}
	if !ok {
		return HotspotState{}, fmt.Errorf("failed to create hotspot %q: %w", ssid, wifi.ErrOperationFailed)
	}
	s.hotspot = ssid
	return s.hotspotState()
}

func (s *Session) StopHotspot() (HotspotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.wifi.StopHotspot()
	if err != nil {
		return HotspotState{}, fmt.Errorf("failed to stop hotspot: %w", err)
	}
	if !ok {
		return HotspotState{}, fmt.Errorf("failed to stop hotspot: %w", wifi.ErrOperationFailed)
	}
	s.hotspot = ""
	return s.hotspotState()
}
