//go:build linux

package networkmanager

import (
	"fmt"
	"log/slog"
	"time"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
	"github.com/shazow/wifictl/wifi/inproc"
)

const connectionTimeout = 30 * time.Second

const (
	nmDest                  = "org.freedesktop.NetworkManager"
	nmWirelessCapsProperty  = "org.freedesktop.NetworkManager.Device.Wireless.WirelessCapabilities"
	activeConnectionStateOK = gonetworkmanager.NmActiveConnectionStateActivated
)

// Driver implements inproc.Driver using D-Bus to communicate with NetworkManager.
type Driver struct {
	NM       gonetworkmanager.NetworkManager
	Settings gonetworkmanager.Settings
	Logger   *slog.Logger

	// AccessPoints holds the strongest access point per SSID from the last scan.
	AccessPoints map[string]gonetworkmanager.AccessPoint

	wirelessDevice gonetworkmanager.DeviceWireless
	hotspot        gonetworkmanager.ActiveConnection
}

var _ inproc.Driver = (*Driver)(nil)

// New creates a new networkmanager.Driver.
func New(logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w", wifi.ErrNotAvailable)
	}

	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", wifi.ErrOperationFailed)
	}

	return &Driver{
		NM:           nm,
		Settings:     settings,
		Logger:       logger,
		AccessPoints: make(map[string]gonetworkmanager.AccessPoint),
	}, nil
}

// Factory opens a Driver per manager handle.
func Factory(logger *slog.Logger) inproc.Factory {
	return func() (inproc.Driver, error) {
		return New(logger)
	}
}

func (b *Driver) getWirelessDevice() (gonetworkmanager.DeviceWireless, error) {
	if b.wirelessDevice != nil {
		return b.wirelessDevice, nil
	}

	devices, err := b.NM.GetDevices()
	if err != nil {
		return nil, err
	}
	for _, device := range devices {
		if dev, ok := device.(gonetworkmanager.DeviceWireless); ok {
			b.wirelessDevice = dev
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no wireless device found: %w", wifi.ErrNotFound)
}

// Scan requests a fresh scan and reports every visible access point.
func (b *Driver) Scan() []inproc.Record {
	dev, err := b.getWirelessDevice()
	if err != nil {
		b.Logger.Warn("scan failed", "err", err)
		return nil
	}
	if err := dev.RequestScan(); err != nil {
		// NetworkManager rate limits scan requests; the cached list is still useful.
		b.Logger.Debug("scan request rejected", "err", err)
	}

	accessPoints, err := dev.GetAccessPoints()
	if err != nil {
		b.Logger.Warn("failed to list access points", "err", err)
		return nil
	}

	b.AccessPoints = make(map[string]gonetworkmanager.AccessPoint)
	records := make([]inproc.Record, 0, len(accessPoints))
	for _, ap := range accessPoints {
		strength, _ := ap.GetPropertyStrength()
		frequency, _ := ap.GetPropertyFrequency()
		flags, _ := ap.GetPropertyFlags()
		wpaFlags, _ := ap.GetPropertyWPAFlags()
		rsnFlags, _ := ap.GetPropertyRSNFlags()

		rec := inproc.Record{
			Signal:    int32(strength),
			Security:  securityFromFlags(uint32(flags), uint32(wpaFlags), uint32(rsnFlags)),
			Channel:   int32(wifi.ChannelForFrequency(int(frequency))),
			Frequency: int32(frequency),
		}
		if ssid, err := ap.GetPropertySSID(); err == nil && ssid != "" {
			rec.SSID = &ssid
			if existing, ok := b.AccessPoints[ssid]; ok {
				exStrength, _ := existing.GetPropertyStrength()
				if strength > exStrength {
					b.AccessPoints[ssid] = ap
				}
			} else {
				b.AccessPoints[ssid] = ap
			}
		}
		if bssid, err := ap.GetPropertyHWAddress(); err == nil && bssid != "" {
			rec.BSSID = &bssid
		}
		records = append(records, rec)
	}
	return records
}

func (b *Driver) savedConnection(ssid string) gonetworkmanager.Connection {
	if b.Settings == nil {
		return nil
	}
	known, err := b.Settings.ListConnections()
	if err != nil {
		return nil
	}
	for _, kc := range known {
		s, err := kc.GetSettings()
		if err != nil {
			continue
		}
		if name, ok := settingsSSID(s); ok && name == ssid {
			return kc
		}
	}
	return nil
}

// accessPoint returns the cached access point for ssid, scanning once when
// the cache has no entry. A handle used straight after creation has never
// scanned.
func (b *Driver) accessPoint(ssid string) (gonetworkmanager.AccessPoint, bool) {
	if ap, ok := b.AccessPoints[ssid]; ok {
		return ap, true
	}
	b.Scan()
	ap, ok := b.AccessPoints[ssid]
	return ap, ok
}

// Connect joins ssid. With a nil password a saved profile is reused when one
// exists; otherwise a new profile is added. An SSID that is not in range is
// joined as a hidden network.
func (b *Driver) Connect(ssid string, password *string) bool {
	dev, err := b.getWirelessDevice()
	if err != nil {
		b.Logger.Warn("connect failed", "err", err)
		return false
	}
	ap, visible := b.accessPoint(ssid)

	var activeConn gonetworkmanager.ActiveConnection
	saved := b.savedConnection(ssid)
	switch {
	case saved != nil && password == nil && visible:
		activeConn, err = b.NM.ActivateWirelessConnection(saved, dev, ap)
	case saved != nil && password == nil:
		activeConn, err = b.NM.ActivateConnection(saved, dev, nil)
	default:
		iface, _ := dev.GetPropertyInterface()
		security := securityUnknown
		if visible {
			flags, _ := ap.GetPropertyFlags()
			wpaFlags, _ := ap.GetPropertyWPAFlags()
			rsnFlags, _ := ap.GetPropertyRSNFlags()
			security = securityFromFlags(flags, wpaFlags, rsnFlags)
		}
		settings := joinSettings(ssid, iface, uuid.New().String(), password, security)
		if visible {
			activeConn, err = b.NM.AddAndActivateWirelessConnection(settings, dev, ap)
		} else {
			b.Logger.Debug("access point not in range, joining as hidden", "ssid", ssid)
			settings["802-11-wireless"]["hidden"] = true
			activeConn, err = b.NM.AddAndActivateConnection(settings, dev)
		}
	}
	if err != nil {
		b.Logger.Warn("connect failed", "ssid", ssid, "err", err)
		return false
	}

	if err := waitForActivation(activeConn, connectionTimeout); err != nil {
		b.Logger.Warn("connect failed", "ssid", ssid, "err", err)
		return false
	}
	return true
}

// waitForActivation blocks until the connection is fully activated.
func waitForActivation(activeConn gonetworkmanager.ActiveConnection, timeout time.Duration) error {
	stateChanges := make(chan gonetworkmanager.StateChange, 1)
	done := make(chan struct{})
	defer close(done)
	if err := activeConn.SubscribeState(stateChanges, done); err != nil {
		return err
	}

	// Check the initial state first
	initialState, err := activeConn.GetPropertyState()
	if err != nil {
		return err
	}
	if initialState == activeConnectionStateOK {
		return nil
	}

	deadline := time.After(timeout)
	for {
		select {
		case change := <-stateChanges:
			if change.State == activeConnectionStateOK {
				return nil
			}
			if change.State == gonetworkmanager.NmActiveConnectionStateDeactivated {
				return fmt.Errorf("connection failed: %w", wifi.ErrOperationFailed)
			}
		case <-deadline:
			return fmt.Errorf("connection timed out: %w", wifi.ErrOperationFailed)
		}
	}
}

func (b *Driver) Disconnect() bool {
	dev, err := b.getWirelessDevice()
	if err != nil {
		b.Logger.Warn("disconnect failed", "err", err)
		return false
	}
	if err := dev.Disconnect(); err != nil {
		b.Logger.Warn("disconnect failed", "err", err)
		return false
	}
	return true
}

func (b *Driver) Status() int32 {
	dev, err := b.getWirelessDevice()
	if err != nil {
		return ffi.StatusError
	}
	state, err := dev.GetPropertyState()
	if err != nil {
		return ffi.StatusError
	}
	return statusFromDeviceState(uint32(state))
}

func (b *Driver) IsHotspotSupported() bool {
	dev, err := b.getWirelessDevice()
	if err != nil {
		return false
	}
	conn, err := dbus.SystemBus()
	if err != nil {
		return false
	}
	v, err := conn.Object(nmDest, dev.GetPath()).GetProperty(nmWirelessCapsProperty)
	if err != nil {
		b.Logger.Debug("failed to read wireless capabilities", "err", err)
		return false
	}
	caps, ok := v.Value().(uint32)
	return ok && supportsAP(caps)
}

func (b *Driver) CreateHotspot(ssid string) bool {
	if b.IsHotspotActive() {
		return false
	}
	dev, err := b.getWirelessDevice()
	if err != nil {
		return false
	}
	iface, _ := dev.GetPropertyInterface()
	activeConn, err := b.NM.AddAndActivateConnection(hotspotSettings(ssid, iface, uuid.New().String()), dev)
	if err != nil {
		b.Logger.Warn("failed to create hotspot", "ssid", ssid, "err", err)
		return false
	}
	if err := waitForActivation(activeConn, connectionTimeout); err != nil {
		b.Logger.Warn("failed to create hotspot", "ssid", ssid, "err", err)
		b.removeHotspot(activeConn)
		return false
	}
	b.hotspot = activeConn
	return true
}

// removeHotspot deactivates the access point and deletes its profile.
func (b *Driver) removeHotspot(activeConn gonetworkmanager.ActiveConnection) error {
	profile, _ := activeConn.GetPropertyConnection()
	if err := b.NM.DeactivateConnection(activeConn); err != nil {
		return err
	}
	if profile != nil {
		return profile.Delete()
	}
	return nil
}

func (b *Driver) StopHotspot() bool {
	if b.hotspot == nil {
		return true
	}
	if err := b.removeHotspot(b.hotspot); err != nil {
		b.Logger.Warn("failed to stop hotspot", "err", err)
		return false
	}
	b.hotspot = nil
	return true
}

func (b *Driver) IsHotspotActive() bool {
	if b.hotspot == nil {
		return false
	}
	state, err := b.hotspot.GetPropertyState()
	if err != nil || state != activeConnectionStateOK {
		b.hotspot = nil
		return false
	}
	return true
}

// Close leaves any running hotspot up; NetworkManager owns it.
func (b *Driver) Close() error {
	b.wirelessDevice = nil
	b.hotspot = nil
	return nil
}
