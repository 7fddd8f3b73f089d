//go:build linux

package iwd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
	"github.com/shazow/wifictl/wifi/inproc"
)

const connectionTimeout = 30 * time.Second

// IWD constants
const (
	iwdDest              = "net.connman.iwd"
	iwdRoot              = "/"
	iwdManagerPath       = "/net/connman/iwd"
	iwdAgentManagerIface = "net.connman.iwd.AgentManager"
	iwdAgentIface        = "net.connman.iwd.Agent"
	iwdNetworkIface      = "net.connman.iwd.Network"
	iwdBSSIface          = "net.connman.iwd.BasicServiceSet"
	objectManagerIface   = "org.freedesktop.DBus.ObjectManager"
	agentPath            = dbus.ObjectPath("/com/github/shazow/wifictl/agent")
)

// Driver implements inproc.Driver using iwd over the system bus. iwd cannot
// run an open access point, so hotspots are reported as unsupported.
type Driver struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

var _ inproc.Driver = (*Driver)(nil)

// New connects to iwd.
func New(logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", wifi.ErrNotAvailable)
	}
	b := &Driver{conn: conn, logger: logger}
	if _, err := b.getStation(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("iwd is not available: %w: %w", wifi.ErrNotAvailable, err)
	}
	return b, nil
}

// Factory opens a Driver per manager handle.
func Factory(logger *slog.Logger) inproc.Factory {
	return func() (inproc.Driver, error) {
		return New(logger)
	}
}

// --- iwd Helper Functions ---

func (b *Driver) getStation() (dbus.ObjectPath, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := b.conn.Object(iwdDest, iwdRoot).Call(objectManagerIface+".GetManagedObjects", 0).Store(&objects)
	if err != nil {
		return "", err
	}
	station, ok := findStation(objects)
	if !ok {
		return "", fmt.Errorf("no station device found: %w", wifi.ErrNotFound)
	}
	return station, nil
}

func (b *Driver) orderedNetworks(station dbus.ObjectPath) ([]orderedNetwork, error) {
	var networks []orderedNetwork
	err := b.conn.Object(iwdDest, station).Call(iwdStationIface+".GetOrderedNetworks", 0).Store(&networks)
	return networks, err
}

func (b *Driver) networkProperty(path dbus.ObjectPath, name string) (interface{}, bool) {
	v, err := b.conn.Object(iwdDest, path).GetProperty(iwdNetworkIface + "." + name)
	if err != nil {
		return nil, false
	}
	return v.Value(), true
}

// bssid returns the address of the first BSS of a network, when iwd is new
// enough to expose them.
func (b *Driver) bssid(path dbus.ObjectPath) (string, bool) {
	v, ok := b.networkProperty(path, "ExtendedServiceSet")
	if !ok {
		return "", false
	}
	sets, ok := v.([]dbus.ObjectPath)
	if !ok || len(sets) == 0 {
		return "", false
	}
	addr, err := b.conn.Object(iwdDest, sets[0]).GetProperty(iwdBSSIface + ".Address")
	if err != nil {
		return "", false
	}
	s, ok := addr.Value().(string)
	return s, ok
}

func (b *Driver) findNetwork(station dbus.ObjectPath, ssid string) (dbus.ObjectPath, error) {
	networks, err := b.orderedNetworks(station)
	if err != nil {
		return "", err
	}
	for _, n := range networks {
		if name, ok := b.networkProperty(n.Path, "Name"); ok && name == ssid {
			return n.Path, nil
		}
	}
	return "", fmt.Errorf("network %q not in range: %w", ssid, wifi.ErrNotFound)
}

func (b *Driver) Scan() []inproc.Record {
	station, err := b.getStation()
	if err != nil {
		b.logger.Warn("scan failed", "err", err)
		return nil
	}
	// Best effort scan; iwd refuses while one is already running.
	if err := b.conn.Object(iwdDest, station).Call(iwdStationIface+".Scan", 0).Err; err != nil {
		b.logger.Debug("scan request rejected", "err", err)
	}

	networks, err := b.orderedNetworks(station)
	if err != nil {
		b.logger.Warn("failed to list networks", "err", err)
		return nil
	}

	records := make([]inproc.Record, 0, len(networks))
	for _, n := range networks {
		rec := inproc.Record{
			Signal:   signalToStrength(n.Signal),
			Security: securityUnknown,
		}
		if name, ok := b.networkProperty(n.Path, "Name"); ok {
			if s, ok := name.(string); ok && s != "" {
				rec.SSID = &s
			}
		}
		if t, ok := b.networkProperty(n.Path, "Type"); ok {
			if s, ok := t.(string); ok {
				rec.Security = securityFromType(s)
			}
		}
		if addr, ok := b.bssid(n.Path); ok {
			rec.BSSID = &addr
		}
		records = append(records, rec)
	}
	return records
}

// Connect joins ssid. A password is supplied to iwd through a temporary
// agent; with a nil password iwd falls back to its stored credentials.
func (b *Driver) Connect(ssid string, password *string) bool {
	station, err := b.getStation()
	if err != nil {
		b.logger.Warn("connect failed", "err", err)
		return false
	}
	network, err := b.findNetwork(station, ssid)
	if err != nil {
		b.logger.Warn("connect failed", "err", err)
		return false
	}

	a := &agent{passphrase: password}
	if err := b.conn.Export(a, agentPath, iwdAgentIface); err != nil {
		b.logger.Warn("failed to export agent", "err", err)
		return false
	}
	defer b.conn.Export(nil, agentPath, iwdAgentIface)

	manager := b.conn.Object(iwdDest, iwdManagerPath)
	if err := manager.Call(iwdAgentManagerIface+".RegisterAgent", 0, agentPath).Err; err != nil {
		b.logger.Warn("failed to register agent", "err", err)
		return false
	}
	defer manager.Call(iwdAgentManagerIface+".UnregisterAgent", 0, agentPath)

	call := b.conn.Object(iwdDest, network).Go(iwdNetworkIface+".Connect", 0, nil)
	select {
	case <-call.Done:
		if call.Err != nil {
			b.logger.Warn("connect failed", "ssid", ssid, "err", call.Err)
			return false
		}
	case <-time.After(connectionTimeout):
		b.logger.Warn("connect failed", "ssid", ssid, "err", "connection timed out")
		return false
	}
	return b.Status() == ffi.StatusConnected
}

func (b *Driver) Disconnect() bool {
	station, err := b.getStation()
	if err != nil {
		return false
	}
	if err := b.conn.Object(iwdDest, station).Call(iwdStationIface+".Disconnect", 0).Err; err != nil {
		b.logger.Warn("disconnect failed", "err", err)
		return false
	}
	return true
}

func (b *Driver) Status() int32 {
	station, err := b.getStation()
	if err != nil {
		return ffi.StatusError
	}
	v, err := b.conn.Object(iwdDest, station).GetProperty(iwdStationIface + ".State")
	if err != nil {
		return ffi.StatusError
	}
	state, _ := v.Value().(string)
	return statusFromStationState(state)
}

func (b *Driver) CreateHotspot(ssid string) bool { return false }

func (b *Driver) StopHotspot() bool { return true }

func (b *Driver) IsHotspotActive() bool { return false }

func (b *Driver) IsHotspotSupported() bool { return false }

func (b *Driver) Close() error {
	return b.conn.Close()
}
