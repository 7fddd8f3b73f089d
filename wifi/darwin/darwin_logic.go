package darwin

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
)

// securityUnknown is deliberately outside the ffi security codes.
const securityUnknown int32 = -1

type scannedNetwork struct {
	ssid     string
	security int32
	rssi     int
	channel  int
	isActive bool
}

var (
	signalRe         = regexp.MustCompile(`Signal / Noise:\s*(-?\d+)\s*dBm`)
	securityRe       = regexp.MustCompile(`Security:\s*(.+)`)
	channelRe        = regexp.MustCompile(`Channel:\s*(\d+)`)
	currentNetworkRe = regexp.MustCompile(`Current Wi-Fi Network: (.+)`)
)

// parseSystemProfilerOutput parses the output of `system_profiler SPAirPortDataType`
// to extract visible Wi-Fi networks with their signal strength, channel and security.
func parseSystemProfilerOutput(output string) []scannedNetwork {
	var networks []scannedNetwork
	processedSSIDs := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(output))

	inCurrentNetwork := false
	inOtherNetworks := false
	var currentNetwork *scannedNetwork

	flush := func() {
		if currentNetwork == nil || currentNetwork.ssid == "" {
			return
		}
		if !processedSSIDs[currentNetwork.ssid] {
			networks = append(networks, *currentNetwork)
			processedSSIDs[currentNetwork.ssid] = true
			return
		}
		// Update existing entry if this one has signal strength
		if currentNetwork.rssi != 0 {
			for i := range networks {
				if networks[i].ssid == currentNetwork.ssid && networks[i].rssi == 0 {
					networks[i].rssi = currentNetwork.rssi
					break
				}
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Detect section headers
		if strings.Contains(line, "Current Network Information:") {
			inCurrentNetwork = true
			inOtherNetworks = false
			continue
		}
		if strings.Contains(line, "Other Local Wi-Fi Networks:") {
			inCurrentNetwork = false
			inOtherNetworks = true
			continue
		}

		// Stop parsing if we hit another interface (like awdl0)
		if strings.HasPrefix(strings.TrimSpace(line), "awdl") {
			break
		}

		if !inCurrentNetwork && !inOtherNetworks {
			continue
		}

		trimmed := strings.TrimSpace(line)
		leadingSpaces := len(line) - len(strings.TrimLeft(line, " "))

		// Network names are at 12-space indent (under Current/Other sections)
		if leadingSpaces == 12 && strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ": ") {
			flush()
			currentNetwork = &scannedNetwork{
				ssid:     strings.TrimSuffix(trimmed, ":"),
				isActive: inCurrentNetwork,
				security: ffi.SecurityNone,
			}
			continue
		}

		if currentNetwork == nil {
			continue
		}
		if matches := signalRe.FindStringSubmatch(line); len(matches) > 1 {
			currentNetwork.rssi, _ = strconv.Atoi(matches[1])
		}
		if matches := securityRe.FindStringSubmatch(line); len(matches) > 1 {
			currentNetwork.security = parseSecurityType(strings.TrimSpace(matches[1]))
		}
		if matches := channelRe.FindStringSubmatch(line); len(matches) > 1 {
			currentNetwork.channel, _ = strconv.Atoi(matches[1])
		}
	}

	// Don't forget the last network
	flush()
	return networks
}

// parseSecurityType maps a system_profiler security label to an ffi code.
func parseSecurityType(s string) int32 {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "wpa3"):
		return ffi.SecurityWPA3
	case strings.Contains(s, "wpa2"):
		return ffi.SecurityWPA2
	case strings.Contains(s, "wpa"):
		return ffi.SecurityWPA
	case strings.Contains(s, "wep"):
		return ffi.SecurityWEP
	case s == "open" || s == "none":
		return ffi.SecurityNone
	}
	return securityUnknown
}

func rssiToStrength(rssi int) int32 {
	if rssi >= 0 || rssi <= -100 {
		return 0
	}
	strength := int32(2 * (rssi + 100))
	if strength > 100 {
		strength = 100
	}
	return strength
}

func (n scannedNetwork) frequency() int32 {
	return int32(wifi.FrequencyForChannel(n.channel))
}

// findWifiDevice parses the output of `networksetup -listallhardwareports` to find the Wi-Fi device.
func findWifiDevice(output string) (string, error) {
	// The output is a series of stanzas, separated by blank lines.
	for _, stanza := range strings.Split(output, "\n\n") {
		var device string
		isWifiPort := false
		for _, line := range strings.Split(stanza, "\n") {
			if port, ok := strings.CutPrefix(line, "Hardware Port: "); ok {
				isWifiPort = strings.Contains(port, "Wi-Fi") || strings.Contains(port, "AirPort")
			}
			if d, ok := strings.CutPrefix(line, "Device: "); ok {
				device = d
			}
		}
		if isWifiPort && device != "" {
			return device, nil
		}
	}
	return "", fmt.Errorf("no Wi-Fi interface found: %w", wifi.ErrNotFound)
}

// parseCurrentNetwork parses `networksetup -getairportnetwork`.
func parseCurrentNetwork(output string) (string, bool) {
	matches := currentNetworkRe.FindStringSubmatch(output)
	if len(matches) < 2 {
		return "", false
	}
	return strings.TrimSpace(matches[1]), true
}

// joinFailed reports whether `networksetup -setairportnetwork` output
// describes a failure. networksetup exits 0 even when joining fails.
func joinFailed(output string) bool {
	out := strings.ToLower(output)
	return strings.Contains(out, "could not") || strings.Contains(out, "failed") || strings.Contains(out, "error")
}
