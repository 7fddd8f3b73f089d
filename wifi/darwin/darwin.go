//go:build darwin

package darwin

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
	"github.com/shazow/wifictl/wifi/inproc"
)

// runWithOutput wraps exec.Command to capture stderr and wrap errors.
func runWithOutput(c *exec.Cmd) ([]byte, error) {
	var stderr strings.Builder
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		return out, fmt.Errorf("failed to run command: %s: %w: %s", c.String(), err, stderr.String())
	}
	return out, nil
}

// runOnly wraps exec.Command for commands where we don't care about stdout.
func runOnly(c *exec.Cmd) error {
	var stderr strings.Builder
	c.Stderr = &stderr
	err := c.Run()
	if err != nil {
		return fmt.Errorf("failed to run command: %s: %w: %s", c.String(), err, stderr.String())
	}
	return nil
}

// Driver implements inproc.Driver for macOS with networksetup and
// system_profiler. macOS offers no scriptable access point, so hotspots are
// reported as unsupported.
type Driver struct {
	WifiInterface string
	Logger        *slog.Logger
}

var _ inproc.Driver = (*Driver)(nil)

// New creates a new darwin.Driver.
func New(logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Find the Wi-Fi interface name (e.g., en0)
	out, err := runWithOutput(exec.Command("networksetup", "-listallhardwareports"))
	if err != nil {
		return nil, fmt.Errorf("failed to list hardware ports: %w", wifi.ErrOperationFailed)
	}

	device, err := findWifiDevice(string(out))
	if err != nil {
		return nil, err
	}

	return &Driver{WifiInterface: device, Logger: logger}, nil
}

// Factory opens a Driver per manager handle.
func Factory(logger *slog.Logger) inproc.Factory {
	return func() (inproc.Driver, error) {
		return New(logger)
	}
}

// Scan for visible networks using system_profiler (airport command is deprecated)
func (b *Driver) Scan() []inproc.Record {
	out, err := runWithOutput(exec.Command("system_profiler", "SPAirPortDataType"))
	if err != nil {
		b.Logger.Warn("scan failed", "err", err)
		return nil
	}

	scanned := parseSystemProfilerOutput(string(out))
	records := make([]inproc.Record, 0, len(scanned))
	for _, n := range scanned {
		ssid := n.ssid
		records = append(records, inproc.Record{
			SSID:      &ssid,
			Signal:    rssiToStrength(n.rssi),
			Security:  n.security,
			Channel:   int32(n.channel),
			Frequency: n.frequency(),
		})
	}
	return records
}

// Connect joins ssid. For known networks networksetup uses stored credentials
// from the keychain when no password is given.
func (b *Driver) Connect(ssid string, password *string) bool {
	args := []string{"-setairportnetwork", b.WifiInterface, ssid}
	if password != nil {
		args = append(args, *password)
	}
	out, err := runWithOutput(exec.Command("networksetup", args...))
	if err != nil || joinFailed(string(out)) {
		b.Logger.Warn("connect failed", "ssid", ssid, "err", err, "output", strings.TrimSpace(string(out)))
		return false
	}
	return true
}

// Disconnect power cycles the radio, which drops the association without
// forgetting the network.
func (b *Driver) Disconnect() bool {
	for _, state := range []string{"off", "on"} {
		if err := runOnly(exec.Command("networksetup", "-setairportpower", b.WifiInterface, state)); err != nil {
			b.Logger.Warn("disconnect failed", "err", err)
			return false
		}
	}
	return true
}

func (b *Driver) Status() int32 {
	out, err := runWithOutput(exec.Command("networksetup", "-getairportnetwork", b.WifiInterface))
	if err != nil {
		return ffi.StatusError
	}
	if _, ok := parseCurrentNetwork(string(out)); ok {
		return ffi.StatusConnected
	}
	return ffi.StatusDisconnected
}

func (b *Driver) CreateHotspot(ssid string) bool { return false }

func (b *Driver) StopHotspot() bool { return true }

func (b *Driver) IsHotspotActive() bool { return false }

func (b *Driver) IsHotspotSupported() bool { return false }

func (b *Driver) Close() error { return nil }
