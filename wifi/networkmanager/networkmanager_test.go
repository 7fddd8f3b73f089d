//go:build linux

package networkmanager

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
)

type mockNM struct {
	gonetworkmanager.NetworkManager
	getDevicesFunc func() ([]gonetworkmanager.Device, error)

	added         []map[string]map[string]interface{}
	addedWireless []map[string]map[string]interface{}
}

func (m *mockNM) AddAndActivateConnection(settings map[string]map[string]interface{}, d gonetworkmanager.Device) (gonetworkmanager.ActiveConnection, error) {
	m.added = append(m.added, settings)
	return &mockActiveConnection{}, nil
}

func (m *mockNM) AddAndActivateWirelessConnection(settings map[string]map[string]interface{}, d gonetworkmanager.Device, ap gonetworkmanager.AccessPoint) (gonetworkmanager.ActiveConnection, error) {
	m.addedWireless = append(m.addedWireless, settings)
	return &mockActiveConnection{}, nil
}

type mockActiveConnection struct {
	gonetworkmanager.ActiveConnection
}

func (m *mockActiveConnection) SubscribeState(receiver chan gonetworkmanager.StateChange, exit chan struct{}) error {
	return nil
}

func (m *mockActiveConnection) GetPropertyState() (gonetworkmanager.NmActiveConnectionState, error) {
	return gonetworkmanager.NmActiveConnectionStateActivated, nil
}

type mockAccessPoint struct {
	gonetworkmanager.AccessPoint
	ssid     string
	rsnFlags uint32
}

func (m *mockAccessPoint) GetPropertySSID() (string, error)      { return m.ssid, nil }
func (m *mockAccessPoint) GetPropertyHWAddress() (string, error) { return "AA:BB:CC:DD:EE:FF", nil }
func (m *mockAccessPoint) GetPropertyStrength() (uint8, error)   { return 70, nil }
func (m *mockAccessPoint) GetPropertyFrequency() (uint32, error) { return 2437, nil }
func (m *mockAccessPoint) GetPropertyFlags() (uint32, error)     { return 1, nil }
func (m *mockAccessPoint) GetPropertyWPAFlags() (uint32, error)  { return 0, nil }
func (m *mockAccessPoint) GetPropertyRSNFlags() (uint32, error)  { return m.rsnFlags, nil }

func (m *mockNM) GetDevices() ([]gonetworkmanager.Device, error) {
	if m.getDevicesFunc != nil {
		return m.getDevicesFunc()
	}
	return nil, nil
}

type mockDeviceWireless struct {
	gonetworkmanager.DeviceWireless
	scanRequests int
	scanErr      error
	accessPoints []gonetworkmanager.AccessPoint
}

func (m *mockDeviceWireless) GetPropertyInterface() (string, error) {
	return "wlan0", nil
}

func (m *mockDeviceWireless) RequestScan() error {
	m.scanRequests++
	return m.scanErr
}

func (m *mockDeviceWireless) GetAccessPoints() ([]gonetworkmanager.AccessPoint, error) {
	return m.accessPoints, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestGetWirelessDevice_Caching(t *testing.T) {
	callCount := 0
	mockDev := &mockDeviceWireless{}

	nm := &mockNM{
		getDevicesFunc: func() ([]gonetworkmanager.Device, error) {
			callCount++
			return []gonetworkmanager.Device{mockDev}, nil
		},
	}

	b := &Driver{
		NM:     nm,
		Logger: discard,
	}

	// First call
	dev, err := b.getWirelessDevice()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev != mockDev {
		t.Errorf("expected device %v, got %v", mockDev, dev)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	// Second call (should be cached)
	dev2, err := b.getWirelessDevice()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev2 != mockDev {
		t.Errorf("expected device %v, got %v", mockDev, dev2)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestNoWirelessDevice(t *testing.T) {
	b := &Driver{NM: &mockNM{}, Logger: discard}

	if _, err := b.getWirelessDevice(); !errors.Is(err, wifi.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if records := b.Scan(); records != nil {
		t.Errorf("expected no records, got %v", records)
	}
	if b.Connect("Home", nil) {
		t.Error("expected Connect to fail without a device")
	}
	if b.Disconnect() {
		t.Error("expected Disconnect to fail without a device")
	}
	if got := b.Status(); got != ffi.StatusError {
		t.Errorf("expected StatusError, got %d", got)
	}
	if b.IsHotspotSupported() {
		t.Error("expected no hotspot support without a device")
	}
	if b.CreateHotspot("Spot") {
		t.Error("expected CreateHotspot to fail without a device")
	}
}

func TestScanRejectedRequestStillLists(t *testing.T) {
	dev := &mockDeviceWireless{scanErr: errors.New("scan rate limited")}
	b := &Driver{
		NM: &mockNM{getDevicesFunc: func() ([]gonetworkmanager.Device, error) {
			return []gonetworkmanager.Device{dev}, nil
		}},
		Logger: discard,
	}

	records := b.Scan()
	if records == nil || len(records) != 0 {
		t.Errorf("expected an empty record list, got %#v", records)
	}
	if dev.scanRequests != 1 {
		t.Errorf("expected 1 scan request, got %d", dev.scanRequests)
	}
}

func TestStopHotspotWithoutHotspot(t *testing.T) {
	b := &Driver{NM: &mockNM{}, Logger: discard}
	if !b.StopHotspot() {
		t.Error("expected StopHotspot to succeed when nothing is running")
	}
	if b.IsHotspotActive() {
		t.Error("expected no active hotspot")
	}
}

func newConnectDriver(dev *mockDeviceWireless) (*Driver, *mockNM) {
	nm := &mockNM{getDevicesFunc: func() ([]gonetworkmanager.Device, error) {
		return []gonetworkmanager.Device{dev}, nil
	}}
	return &Driver{
		NM:           nm,
		Logger:       discard,
		AccessPoints: map[string]gonetworkmanager.AccessPoint{},
	}, nm
}

func TestConnectWithoutPriorScan(t *testing.T) {
	dev := &mockDeviceWireless{accessPoints: []gonetworkmanager.AccessPoint{
		&mockAccessPoint{ssid: "HomeNet", rsnFlags: keyMgmtPSK},
	}}
	b, nm := newConnectDriver(dev)

	pw := "hunter2"
	if !b.Connect("HomeNet", &pw) {
		t.Fatal("expected Connect to succeed")
	}
	if dev.scanRequests != 1 {
		t.Errorf("expected the access point cache to be filled by one scan, got %d", dev.scanRequests)
	}
	if len(nm.addedWireless) != 1 || len(nm.added) != 0 {
		t.Fatalf("expected one wireless add/activate, got wireless=%d plain=%d", len(nm.addedWireless), len(nm.added))
	}
	sec := nm.addedWireless[0]["802-11-wireless-security"]
	if sec["key-mgmt"] != "wpa-psk" || sec["psk"] != "hunter2" {
		t.Errorf("unexpected security settings: %v", sec)
	}
}

func TestConnectOutOfRangeJoinsHidden(t *testing.T) {
	dev := &mockDeviceWireless{}
	b, nm := newConnectDriver(dev)

	pw := "hunter2"
	if !b.Connect("HomeNet", &pw) {
		t.Fatal("expected Connect to succeed")
	}
	if len(nm.added) != 1 || len(nm.addedWireless) != 0 {
		t.Fatalf("expected one add/activate, got plain=%d wireless=%d", len(nm.added), len(nm.addedWireless))
	}
	settings := nm.added[0]
	if settings["802-11-wireless"]["hidden"] != true {
		t.Error("expected the profile to be marked hidden")
	}
	if settings["802-11-wireless-security"]["psk"] != "hunter2" {
		t.Errorf("expected the password in the profile, got %v", settings["802-11-wireless-security"])
	}

	if !b.Connect("OpenCafe", nil) {
		t.Fatal("expected Connect to succeed")
	}
	if _, ok := nm.added[1]["802-11-wireless-security"]; ok {
		t.Error("expected an open profile for a nil password")
	}
}
