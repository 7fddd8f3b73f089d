package iwd

import (
	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifictl/wifi/ffi"
)

const iwdStationIface = "net.connman.iwd.Station"

// securityUnknown is deliberately outside the ffi security codes.
const securityUnknown int32 = -1

// securityFromType maps net.connman.iwd.Network.Type. iwd does not tell WPA
// generations apart, so PSK networks are reported as WPA2.
func securityFromType(t string) int32 {
	switch t {
	case "open":
		return ffi.SecurityNone
	case "wep":
		return ffi.SecurityWEP
	case "psk", "8021x":
		return ffi.SecurityWPA2
	}
	return securityUnknown
}

// statusFromStationState maps net.connman.iwd.Station.State.
func statusFromStationState(state string) int32 {
	switch state {
	case "connected":
		return ffi.StatusConnected
	case "connecting", "roaming":
		return ffi.StatusConnecting
	case "disconnected", "disconnecting":
		return ffi.StatusDisconnected
	}
	return ffi.StatusError
}

// signalToStrength converts GetOrderedNetworks' signal, in 100 * dBm, to a
// 0-100 percentage.
func signalToStrength(signal int16) int32 {
	dbm := int32(signal) / 100
	if dbm >= 0 || dbm <= -100 {
		return 0
	}
	strength := 2 * (dbm + 100)
	if strength > 100 {
		strength = 100
	}
	return strength
}

// orderedNetwork is one entry of Station.GetOrderedNetworks, a(on).
type orderedNetwork struct {
	Path   dbus.ObjectPath
	Signal int16
}

// findStation returns the first object implementing the Station interface
// from an ObjectManager.GetManagedObjects reply.
func findStation(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) (dbus.ObjectPath, bool) {
	var found dbus.ObjectPath
	for path, ifaces := range objects {
		if _, ok := ifaces[iwdStationIface]; !ok {
			continue
		}
		// Map order is random; pick the lowest path so the choice is stable.
		if found == "" || path < found {
			found = path
		}
	}
	return found, found != ""
}

const agentErrorCanceled = "net.connman.iwd.Agent.Error.Canceled"

// agent answers iwd's passphrase requests for a single Connect call.
type agent struct {
	passphrase *string
	requested  int
}

func (a *agent) Release() *dbus.Error {
	return nil
}

func (a *agent) RequestPassphrase(network dbus.ObjectPath) (string, *dbus.Error) {
	a.requested++
	if a.passphrase == nil {
		return "", dbus.NewError(agentErrorCanceled, []interface{}{"no passphrase"})
	}
	return *a.passphrase, nil
}

func (a *agent) Cancel(reason string) *dbus.Error {
	return nil
}
