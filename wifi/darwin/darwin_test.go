package darwin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/ffi"
)

func TestFindWifiDevice(t *testing.T) {
	mockedOutput := `Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: a1:b2:c3:d4:e5:f8

Hardware Port: Wi-Fi
Device: en0
Ethernet Address: a1:b2:c3:d4:e5:f6

Hardware Port: Bluetooth PAN
Device: en8
Ethernet Address: a1:b2:c3:d4:e5:f7`

	device, err := findWifiDevice(mockedOutput)
	require.NoError(t, err)
	assert.Equal(t, "en0", device)

	_, err = findWifiDevice("Hardware Port: Ethernet\nDevice: en1\n")
	assert.ErrorIs(t, err, wifi.ErrNotFound)
}

const profilerOutput = `Wi-Fi:

      Software Versions:
          CoreWLAN: 16.0 (1657)
      Interfaces:
        en0:
          Card Type: Wi-Fi
          Status: Connected
          Current Network Information:
            MyHomeNetwork:
              PHY Mode: 802.11ac
              Channel: 36 (5GHz, 80MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -55 dBm / -95 dBm
              Transmit Rate: 866
          Other Local Wi-Fi Networks:
            MyHomeNetwork:
              PHY Mode: 802.11n
              Channel: 6 (2GHz, 20MHz)
              Security: WPA2 Personal
            NeighborWiFi:
              PHY Mode: 802.11n
              Channel: 6 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: WPA3 Personal
              Signal / Noise: -75 dBm / -90 dBm
            OpenCafe:
              PHY Mode: 802.11g
              Channel: 11 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: Open
            Lobby:
              Channel: 1 (2GHz, 20MHz)
              Security: WPA2 Enterprise
            Mystery:
              Security: OWE
        awdl0:
          MAC Address: 00:11:22:33:44:55
            Ignored:
              Security: Open`

func TestParseSystemProfilerOutput(t *testing.T) {
	networks := parseSystemProfilerOutput(profilerOutput)
	require.Len(t, networks, 5)

	byName := map[string]scannedNetwork{}
	for _, n := range networks {
		byName[n.ssid] = n
	}

	home := byName["MyHomeNetwork"]
	assert.True(t, home.isActive)
	assert.Equal(t, -55, home.rssi)
	assert.Equal(t, 36, home.channel)
	assert.Equal(t, int32(5180), home.frequency())
	assert.Equal(t, ffi.SecurityWPA2, home.security)

	neighbor := byName["NeighborWiFi"]
	assert.False(t, neighbor.isActive)
	assert.Equal(t, -75, neighbor.rssi)
	assert.Equal(t, ffi.SecurityWPA3, neighbor.security)
	assert.Equal(t, int32(2437), neighbor.frequency())

	assert.Equal(t, ffi.SecurityNone, byName["OpenCafe"].security)
	assert.Equal(t, 0, byName["OpenCafe"].rssi)
	assert.Equal(t, ffi.SecurityWPA2, byName["Lobby"].security)
	assert.Equal(t, securityUnknown, byName["Mystery"].security)
	assert.Equal(t, int32(0), byName["Mystery"].frequency())
}

func TestRssiToStrength(t *testing.T) {
	tests := []struct {
		rssi     int
		expected int32
	}{
		{-50, 100}, // Strong signal
		{-70, 60},  // Medium signal
		{-90, 20},  // Weak signal
		{-100, 0},  // Minimum
		{-110, 0},  // Below minimum
		{0, 0},     // Invalid
		{10, 0},    // Invalid positive
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, rssiToStrength(tt.rssi), "rssi %d", tt.rssi)
	}
}

func TestParseCurrentNetwork(t *testing.T) {
	ssid, ok := parseCurrentNetwork("Current Wi-Fi Network: Home Sweet Home\n")
	assert.True(t, ok)
	assert.Equal(t, "Home Sweet Home", ssid)

	_, ok = parseCurrentNetwork("You are not associated with an AirPort network.\n")
	assert.False(t, ok)
}

func TestJoinFailed(t *testing.T) {
	assert.False(t, joinFailed(""))
	assert.True(t, joinFailed("Could not find network Nope."))
	assert.True(t, joinFailed("Failed to join network Home.\nError: -3900  The operation couldn't be completed."))
}
