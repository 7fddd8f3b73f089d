package mock

import (
	"testing"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
)

func init() {
	DefaultActionSleep = 0
}

// Helper to find a network in a slice
func findNetwork(networks []wifi.NetworkInfo, ssid string) *wifi.NetworkInfo {
	for i := range networks {
		if networks[i].SSID == ssid {
			return &networks[i]
		}
	}
	return nil
}

func newWiFi(t *testing.T) (*wifi.WiFi, *Driver) {
	t.Helper()
	lib, d := Library()
	w, err := wifi.New(lib, nil)
	if err != nil {
		t.Fatalf("wifi.New() failed: %v", err)
	}
	t.Cleanup(func() {
		w.Close()
		if v := lib.Violations(); len(v) > 0 {
			t.Errorf("contract violations: %v", v)
		}
		if s := lib.Stats(); s.Outstanding != 0 {
			t.Errorf("expected no outstanding scan buffers, got %d", s.Outstanding)
		}
	})
	return w, d
}

func TestNew(t *testing.T) {
	d := New()
	if len(d.Networks) == 0 {
		t.Fatal("New() returned no networks")
	}
	if d.Status() != ffi.StatusDisconnected {
		t.Errorf("expected initial status Disconnected, got %d", d.Status())
	}
}

func TestScan(t *testing.T) {
	w, d := newWiFi(t)

	networks, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(networks) != len(d.Networks) {
		t.Fatalf("expected %d networks, got %d", len(d.Networks), len(networks))
	}

	n := findNetwork(networks, "Unencrypted_Honeypot")
	if n == nil {
		t.Fatal("did not find Unencrypted_Honeypot")
	}
	if n.Security != wifi.SecurityNone || n.IsSecure() {
		t.Errorf("expected Unencrypted_Honeypot to be open, got %s", n.Security)
	}
	if n.Channel != 11 || n.Frequency != 2462 {
		t.Errorf("unexpected channel/frequency %d/%d", n.Channel, n.Frequency)
	}

	if n := findNetwork(networks, "Enterprise Mystery"); n == nil || n.Security != wifi.SecurityUnknown {
		t.Errorf("expected out of range security to decode as Unknown, got %+v", n)
	}

	hidden := findNetwork(networks, "")
	if hidden == nil {
		t.Fatal("expected the hidden network to decode with an empty SSID")
	}
	if hidden.BSSID != "02:00:00:00:00:0a" {
		t.Errorf("unexpected hidden BSSID %q", hidden.BSSID)
	}
}

func TestScanEmpty(t *testing.T) {
	w, d := newWiFi(t)
	d.Networks = nil

	networks, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if networks == nil || len(networks) != 0 {
		t.Errorf("expected an empty, non-nil slice, got %#v", networks)
	}
}

func TestConnect(t *testing.T) {
	w, d := newWiFi(t)
	password := "password"
	wrong := "hunter2"
	empty := ""

	tests := []struct {
		name     string
		ssid     string
		password *string
		ok       bool
		status   wifi.ConnectionStatus
	}{
		{"secured with password", "Password is password", &password, true, wifi.StatusConnected},
		{"secured with wrong password", "Password is password", &wrong, false, wifi.StatusDisconnected},
		{"secured without password", "TacoBoutAGoodSignal", nil, false, wifi.StatusDisconnected},
		{"open without password", "Unencrypted_Honeypot", nil, true, wifi.StatusConnected},
		{"open with empty password", "FreeHugsAndWiFi", &empty, true, wifi.StatusConnected},
		{"out of range", "NotHere", nil, false, wifi.StatusDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := w.Connect(tt.ssid, tt.password)
			if err != nil {
				t.Fatalf("Connect() failed: %v", err)
			}
			if ok != tt.ok {
				t.Errorf("Connect() = %t, want %t", ok, tt.ok)
			}
			status, err := w.Status()
			if err != nil {
				t.Fatalf("Status() failed: %v", err)
			}
			if status != tt.status {
				t.Errorf("Status() = %s, want %s", status, tt.status)
			}
		})
	}

	if len(d.ConnectCalls) != len(tests) {
		t.Fatalf("expected %d connect calls, got %d", len(tests), len(d.ConnectCalls))
	}
	if d.ConnectCalls[2].Password != nil {
		t.Errorf("expected a null password, got %q", *d.ConnectCalls[2].Password)
	}
	if p := d.ConnectCalls[4].Password; p == nil || *p != "" {
		t.Errorf("expected an empty, non-null password, got %v", p)
	}
}

func TestDisconnect(t *testing.T) {
	w, d := newWiFi(t)
	if ok, _ := w.Connect("Unencrypted_Honeypot", nil); !ok {
		t.Fatal("Connect() failed")
	}
	ok, err := w.Disconnect()
	if err != nil || !ok {
		t.Fatalf("Disconnect() = %t, %v", ok, err)
	}
	if d.ConnectedSSID() != "" {
		t.Errorf("expected no connected network, got %q", d.ConnectedSSID())
	}
}

func TestHotspot(t *testing.T) {
	w, d := newWiFi(t)

	// Stop is a no-op when nothing is running.
	if ok, err := w.StopHotspot(); err != nil || !ok {
		t.Fatalf("StopHotspot() = %t, %v", ok, err)
	}

	if ok, err := w.CreateHotspot("RustHotspot"); err != nil || !ok {
		t.Fatalf("CreateHotspot() = %t, %v", ok, err)
	}
	if active, _ := w.IsHotspotActive(); !active {
		t.Error("expected hotspot to be active")
	}
	if d.HotspotSSID() != "RustHotspot" {
		t.Errorf("unexpected hotspot SSID %q", d.HotspotSSID())
	}

	// A second hotspot is refused while one is running.
	if ok, _ := w.CreateHotspot("Another"); ok {
		t.Error("expected second CreateHotspot() to fail")
	}

	if ok, _ := w.StopHotspot(); !ok {
		t.Error("StopHotspot() failed")
	}
	if active, _ := w.IsHotspotActive(); active {
		t.Error("expected hotspot to be stopped")
	}
}

func TestHotspotUnsupported(t *testing.T) {
	w, d := newWiFi(t)
	d.HotspotSupported = false

	if supported, _ := w.IsHotspotSupported(); supported {
		t.Error("expected hotspot to be unsupported")
	}
	if ok, _ := w.CreateHotspot("RustHotspot"); ok {
		t.Error("expected CreateHotspot() to fail")
	}
}

func TestCloseClosesDriver(t *testing.T) {
	lib, d := Library()
	w, err := wifi.New(lib, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if !d.Closed() {
		t.Error("expected driver to be closed")
	}
}
