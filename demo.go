package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shazow/wifictl/wifi"
)

// demoHotspotSSID is the access point created by the demo.
const demoHotspotSSID = "RustHotspot"

// runDemo walks through every backend operation once and prints what
// happened. Failures are reported, never returned: the demo always completes.
func runDemo(w io.Writer, r io.Reader, wf *wifi.WiFi) error {
	fmt.Fprintln(w, "Scanning for WiFi networks...")
	networks, err := wf.Scan()
	if err != nil {
		fmt.Fprintf(w, "Scan failed: %v\n", err)
	}
	fmt.Fprintf(w, "Found %d networks\n", len(networks))
	for _, n := range networks {
		fmt.Fprintf(w, "SSID: %s, BSSID: %s, Signal: %d%%, Security: %s, Channel: %d, Frequency: %d MHz\n",
			n.SSID, n.BSSID, n.SignalStrength, n.Security, n.Channel, n.Frequency)
	}

	if len(networks) > 0 {
		demoConnect(w, wf, networks)
	}

	fmt.Fprintln(w, "\nChecking hotspot functionality...")
	supported, err := wf.IsHotspotSupported()
	if err != nil {
		fmt.Fprintf(w, "Hotspot check failed: %v\n", err)
		return nil
	}
	if !supported {
		fmt.Fprintln(w, "Hotspot functionality is not supported on this device")
		return nil
	}
	fmt.Fprintln(w, "Hotspot functionality is supported on this device")

	if active, _ := wf.IsHotspotActive(); active {
		fmt.Fprintln(w, "A hotspot is currently active")
		fmt.Fprintln(w, "Stopping active hotspot...")
		printResult(w, wf.StopHotspot, "Hotspot stopped successfully", "Failed to stop hotspot")
	}

	fmt.Fprintf(w, "Creating a test hotspot with SSID: %s\n", demoHotspotSSID)
	fmt.Fprintln(w, "Note: This requires administrative privileges")
	ok, err := wf.CreateHotspot(demoHotspotSSID)
	if err != nil || !ok {
		fmt.Fprintln(w, "Failed to create hotspot. Make sure you're running with admin privileges")
		return nil
	}
	fmt.Fprintln(w, "Hotspot created successfully")
	active, _ := wf.IsHotspotActive()
	fmt.Fprintf(w, "Hotspot active: %t\n", active)

	fmt.Fprintln(w, "Press Enter to stop the hotspot...")
	// EOF counts as Enter so the demo can run unattended.
	bufio.NewReader(r).ReadString('\n')

	fmt.Fprintln(w, "Stopping hotspot...")
	printResult(w, wf.StopHotspot, "Hotspot stopped successfully", "Failed to stop hotspot")
	return nil
}

func demoConnect(w io.Writer, wf *wifi.WiFi, networks []wifi.NetworkInfo) {
	open := wifi.OpenNetworks(networks)
	if len(open) == 0 {
		fmt.Fprintln(w, "No open networks available for automatic connection")
		return
	}
	ssid := open[0].SSID
	fmt.Fprintf(w, "Attempting to connect to open network: %s\n", ssid)
	ok, err := wf.Connect(ssid, nil)
	if err != nil || !ok {
		fmt.Fprintln(w, "Failed to connect to the network")
		return
	}
	fmt.Fprintln(w, "Connection initiated successfully")
	status, _ := wf.Status()
	fmt.Fprintf(w, "Connection status: %s\n", status)
}

func printResult(w io.Writer, op func() (bool, error), success, failure string) {
	if ok, err := op(); err != nil || !ok {
		fmt.Fprintln(w, failure)
		return
	}
	fmt.Fprintln(w, success)
}
