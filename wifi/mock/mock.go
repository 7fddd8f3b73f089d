// Package mock is an in-memory WiFi driver with a fixed set of fun networks.
// It is used by tests and by `wifictl --backend mock`.
package mock

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shazow/wifictl/wifi/ffi"
	"github.com/shazow/wifictl/wifi/inproc"
)

var DefaultActionSleep = 500 * time.Millisecond

// Network is a simulated access point.
type Network struct {
	SSID      string
	BSSID     string
	Hidden    bool // scanned with a null SSID
	Strength  int32
	Security  int32 // ffi security code, may be out of range on purpose
	Channel   int32
	Frequency int32
	Password  string
}

// ConnectCall is one Connect as the driver received it. A nil Password means
// the caller sent a null pointer.
type ConnectCall struct {
	SSID     string
	Password *string
}

// Driver is a mock implementation of inproc.Driver.
type Driver struct {
	mu sync.Mutex

	Networks         []Network
	HotspotSupported bool
	// Jitter re-randomizes signal strengths on every scan.
	Jitter bool
	// ConnectError and HotspotError force the respective calls to fail.
	ConnectError bool
	HotspotError bool

	// ActionSleep is a delay before every action, to better emulate a real-world backend for the frontend. Set to 0 during testing.
	ActionSleep time.Duration

	connected     string
	status        int32
	hotspotSSID   string
	hotspotActive bool
	closed        bool

	Calls        []string
	ConnectCalls []ConnectCall
}

var _ inproc.Driver = (*Driver)(nil)

// New creates a new mock.Driver with a list of fun wifi networks.
func New() *Driver {
	return &Driver{
		Networks: []Network{
			{SSID: "TacoBoutAGoodSignal", BSSID: "02:00:00:00:00:01", Strength: 99, Security: ffi.SecurityWPA2, Channel: 6, Frequency: 2437, Password: "tacotuesday"},
			{SSID: "Password is password", BSSID: "02:00:00:00:00:02", Strength: 87, Security: ffi.SecurityWPA2, Channel: 1, Frequency: 2412, Password: "password"},
			{SSID: "Unencrypted_Honeypot", BSSID: "02:00:00:00:00:03", Strength: 72, Security: ffi.SecurityNone, Channel: 11, Frequency: 2462},
			{SSID: "Multi-AP Network", BSSID: "00:11:22:33:44:55", Strength: 80, Security: ffi.SecurityWPA3, Channel: 1, Frequency: 2412, Password: "together"},
			{SSID: "Multi-AP Network", BSSID: "AA:BB:CC:DD:EE:FF", Strength: 60, Security: ffi.SecurityWPA3, Channel: 36, Frequency: 5180, Password: "together"},
			{SSID: "Police Surveillance 2", BSSID: "02:00:00:00:00:06", Strength: 48, Security: ffi.SecurityWPA, Channel: 44, Frequency: 5220, Password: "donttellanyone"},
			{SSID: "NeverGonnaGiveYouIP", BSSID: "02:00:00:00:00:07", Strength: 41, Security: ffi.SecurityWEP, Channel: 3, Frequency: 2422, Password: "rickroll"},
			{SSID: "FreeHugsAndWiFi", BSSID: "02:00:00:00:00:08", Strength: 35, Security: ffi.SecurityNone, Channel: 149, Frequency: 5745},
			{SSID: "Enterprise Mystery", BSSID: "02:00:00:00:00:09", Strength: 30, Security: 99, Channel: 157, Frequency: 5785},
			{BSSID: "02:00:00:00:00:0a", Hidden: true, Strength: 22, Security: ffi.SecurityWPA2, Channel: 11, Frequency: 2462},
		},
		HotspotSupported: true,
		ActionSleep:      DefaultActionSleep,
		status:           ffi.StatusDisconnected,
	}
}

func (m *Driver) action(name string) {
	time.Sleep(m.ActionSleep)
	m.Calls = append(m.Calls, name)
}

func (m *Driver) Scan() []inproc.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("Scan")

	if m.Jitter {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range m.Networks {
			m.Networks[i].Strength = int32(r.Intn(70) + 30)
		}
	}

	records := make([]inproc.Record, 0, len(m.Networks))
	for _, n := range m.Networks {
		rec := inproc.Record{
			Signal:    n.Strength,
			Security:  n.Security,
			Channel:   n.Channel,
			Frequency: n.Frequency,
		}
		if !n.Hidden {
			ssid := n.SSID
			rec.SSID = &ssid
		}
		if n.BSSID != "" {
			bssid := n.BSSID
			rec.BSSID = &bssid
		}
		records = append(records, rec)
	}
	return records
}

func (m *Driver) Connect(ssid string, password *string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("Connect")

	call := ConnectCall{SSID: ssid}
	if password != nil {
		p := *password
		call.Password = &p
	}
	m.ConnectCalls = append(m.ConnectCalls, call)

	if m.ConnectError || !m.accepts(ssid, password) {
		m.connected = ""
		m.status = ffi.StatusDisconnected
		return false
	}
	m.connected = ssid
	m.status = ffi.StatusConnected
	return true
}

// accepts reports whether ssid is in range and password opens it. Open
// networks take no password or an empty one.
func (m *Driver) accepts(ssid string, password *string) bool {
	for _, n := range m.Networks {
		if n.Hidden || n.SSID != ssid {
			continue
		}
		if n.Security == ffi.SecurityNone {
			return password == nil || *password == ""
		}
		return password != nil && *password == n.Password
	}
	return false
}

func (m *Driver) Disconnect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("Disconnect")

	m.connected = ""
	m.status = ffi.StatusDisconnected
	return true
}

func (m *Driver) Status() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("Status")
	return m.status
}

// SetStatus overrides the reported status code.
func (m *Driver) SetStatus(code int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// ConnectedSSID is the network joined by the last successful Connect.
func (m *Driver) ConnectedSSID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Driver) CreateHotspot(ssid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("CreateHotspot")

	if !m.HotspotSupported || m.HotspotError || m.hotspotActive || ssid == "" {
		return false
	}
	m.hotspotSSID = ssid
	m.hotspotActive = true
	return true
}

func (m *Driver) StopHotspot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("StopHotspot")

	m.hotspotActive = false
	m.hotspotSSID = ""
	return true
}

func (m *Driver) IsHotspotActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("IsHotspotActive")
	return m.hotspotActive
}

func (m *Driver) IsHotspotSupported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action("IsHotspotSupported")
	return m.HotspotSupported
}

// HotspotSSID is the name of the running hotspot, if any.
func (m *Driver) HotspotSSID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hotspotSSID
}

func (m *Driver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether the driver's handle was destroyed.
func (m *Driver) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Factory returns an inproc.Factory that always hands out d.
func Factory(d *Driver) inproc.Factory {
	return func() (inproc.Driver, error) {
		return d, nil
	}
}

// Library is a ready to use ffi.Library backed by a fresh mock Driver.
func Library() (*inproc.Library, *Driver) {
	d := New()
	return inproc.New(Factory(d), nil), d
}
