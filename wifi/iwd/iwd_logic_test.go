package iwd

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifictl/wifi/ffi"
)

func TestSecurityFromType(t *testing.T) {
	assert.Equal(t, ffi.SecurityNone, securityFromType("open"))
	assert.Equal(t, ffi.SecurityWEP, securityFromType("wep"))
	assert.Equal(t, ffi.SecurityWPA2, securityFromType("psk"))
	assert.Equal(t, ffi.SecurityWPA2, securityFromType("8021x"))
	assert.Equal(t, securityUnknown, securityFromType("hotspot"))
}

func TestStatusFromStationState(t *testing.T) {
	tests := map[string]int32{
		"connected":     ffi.StatusConnected,
		"connecting":    ffi.StatusConnecting,
		"roaming":       ffi.StatusConnecting,
		"disconnected":  ffi.StatusDisconnected,
		"disconnecting": ffi.StatusDisconnected,
		"":              ffi.StatusError,
	}
	for state, want := range tests {
		assert.Equal(t, want, statusFromStationState(state), "state %q", state)
	}
}

func TestSignalToStrength(t *testing.T) {
	assert.Equal(t, int32(90), signalToStrength(-5500))
	assert.Equal(t, int32(100), signalToStrength(-4000))
	assert.Equal(t, int32(0), signalToStrength(-10000))
	assert.Equal(t, int32(0), signalToStrength(0))
}

func TestFindStation(t *testing.T) {
	objects := map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		"/net/connman/iwd":   {"net.connman.iwd.AgentManager": {}},
		"/net/connman/iwd/1": {"net.connman.iwd.Adapter": {}},
		"/net/connman/iwd/1/5": {
			"net.connman.iwd.Device":  {"Name": dbus.MakeVariant("wlan1")},
			"net.connman.iwd.Station": {"State": dbus.MakeVariant("disconnected")},
		},
		"/net/connman/iwd/1/4": {
			"net.connman.iwd.Station": {"State": dbus.MakeVariant("connected")},
		},
	}
	station, ok := findStation(objects)
	require.True(t, ok)
	assert.Equal(t, dbus.ObjectPath("/net/connman/iwd/1/4"), station)

	_, ok = findStation(map[dbus.ObjectPath]map[string]map[string]dbus.Variant{})
	assert.False(t, ok)
}

func TestAgent(t *testing.T) {
	secret := "hunter2"
	a := &agent{passphrase: &secret}
	got, err := a.RequestPassphrase("/net/connman/iwd/1/4/home_psk")
	assert.Nil(t, err)
	assert.Equal(t, "hunter2", got)

	a = &agent{}
	_, err = a.RequestPassphrase("/net/connman/iwd/1/4/home_psk")
	require.NotNil(t, err)
	assert.Equal(t, agentErrorCanceled, err.Name)
	assert.Equal(t, 1, a.requested)
}
