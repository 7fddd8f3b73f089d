package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/shazow/wifictl/qrwifi"
	"github.com/shazow/wifictl/wifi"
)

var errMissingSSID = errors.New("an ssid argument is required")

// optionalString is a flag that remembers whether it was set, so an explicit
// empty value can be told apart from an absent one.
type optionalString struct {
	value *string
}

func (o *optionalString) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return *o.value
}

func (o *optionalString) Set(s string) error {
	o.value = &s
	return nil
}

// securityFlag is an optional --security filter, parsed by name.
type securityFlag struct {
	value *wifi.SecurityType
}

func (f *securityFlag) String() string {
	if f == nil || f.value == nil {
		return ""
	}
	return f.value.String()
}

func (f *securityFlag) Set(s string) error {
	var security wifi.SecurityType
	if err := security.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	f.value = &security
	return nil
}

type listOptions struct {
	JSON bool
	Open bool
	// Strongest keeps one access point per SSID.
	Strongest bool
	Security  *wifi.SecurityType
}

func runList(w io.Writer, opts listOptions, wf *wifi.WiFi) error {
	networks, err := wf.Scan()
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	wifi.SortNetworks(networks)
	if opts.Strongest {
		networks = wifi.Strongest(networks)
	}
	if opts.Open {
		networks = wifi.OpenNetworks(networks)
	}
	if opts.Security != nil {
		networks = wifi.FilterSecurity(networks, *opts.Security)
	}

	if opts.JSON {
		if networks == nil {
			networks = []wifi.NetworkInfo{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(networks)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("SSID", "BSSID", "SIGNAL", "SECURITY", "CHANNEL", "FREQUENCY")
	for _, n := range networks {
		t.Row(
			n.SSID,
			n.BSSID,
			strconv.Itoa(n.SignalStrength)+"%",
			n.Security.String(),
			strconv.Itoa(n.Channel),
			strconv.Itoa(n.Frequency)+" MHz",
		)
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

func runStatus(w io.Writer, wf *wifi.WiFi) error {
	status, err := wf.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	fmt.Fprintf(w, "Status: %s\n", status)
	return nil
}

func runConnect(w io.Writer, ssid string, password *string, wf *wifi.WiFi) error {
	ok, err := wf.Connect(ssid, password)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to connect to %q: %w", ssid, wifi.ErrOperationFailed)
	}
	fmt.Fprintf(w, "Connected to %s\n", ssid)
	return nil
}

func runDisconnect(w io.Writer, wf *wifi.WiFi) error {
	ok, err := wf.Disconnect()
	if err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to disconnect: %w", wifi.ErrOperationFailed)
	}
	fmt.Fprintln(w, "Disconnected")
	return nil
}

func runHotspotStatus(w io.Writer, wf *wifi.WiFi) error {
	supported, err := wf.IsHotspotSupported()
	if err != nil {
		return fmt.Errorf("failed to query hotspot: %w", err)
	}
	active, err := wf.IsHotspotActive()
	if err != nil {
		return fmt.Errorf("failed to query hotspot: %w", err)
	}
	fmt.Fprintf(w, "Supported: %t\nActive: %t\n", supported, active)
	return nil
}

func runHotspotStart(w io.Writer, ssid string, showQR bool, wf *wifi.WiFi) error {
	supported, err := wf.IsHotspotSupported()
	if err != nil {
		return fmt.Errorf("failed to query hotspot: %w", err)
	}
	if !supported {
		return fmt.Errorf("hotspot: %w", wifi.ErrNotSupported)
	}
	ok, err := wf.CreateHotspot(ssid)
	if err != nil {
		return fmt.Errorf("failed to create hotspot: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to create hotspot %q: %w", ssid, wifi.ErrOperationFailed)
	}
	fmt.Fprintf(w, "Hotspot %s started\n", ssid)
	if showQR {
		code, err := qrwifi.Generate(ssid, "", wifi.SecurityNone, false)
		if err != nil {
			return fmt.Errorf("failed to render qr code: %w", err)
		}
		fmt.Fprint(w, code)
	}
	return nil
}

func runHotspotStop(w io.Writer, wf *wifi.WiFi) error {
	ok, err := wf.StopHotspot()
	if err != nil {
		return fmt.Errorf("failed to stop hotspot: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to stop hotspot: %w", wifi.ErrOperationFailed)
	}
	fmt.Fprintln(w, "Hotspot stopped")
	return nil
}
