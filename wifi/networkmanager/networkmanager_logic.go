package networkmanager

import "github.com/shazow/wifictl/wifi/ffi"

// NetworkManager D-Bus flag values. Only the bits we read are listed.
const (
	apFlagsPrivacy = 0x1

	keyMgmtPSK   = 0x100
	keyMgmt8021X = 0x200
	keyMgmtSAE   = 0x400
	keyMgmtOWE   = 0x800

	wirelessCapAP = 0x80
)

// NMDeviceState values.
const (
	deviceStateUnknown      = 0
	deviceStateUnmanaged    = 10
	deviceStateUnavailable  = 20
	deviceStateDisconnected = 30
	deviceStatePrepare      = 40
	deviceStateSecondaries  = 90
	deviceStateActivated    = 100
	deviceStateDeactivating = 110
	deviceStateFailed       = 120
)

// securityUnknown is deliberately outside the ffi security codes.
const securityUnknown int32 = -1

// securityFromFlags classifies an access point from its Flags, WpaFlags and
// RsnFlags properties.
func securityFromFlags(flags, wpaFlags, rsnFlags uint32) int32 {
	switch {
	case rsnFlags&keyMgmtSAE != 0:
		return ffi.SecurityWPA3
	case rsnFlags&(keyMgmtPSK|keyMgmt8021X) != 0:
		return ffi.SecurityWPA2
	case wpaFlags != 0:
		return ffi.SecurityWPA
	case rsnFlags&keyMgmtOWE != 0, rsnFlags != 0:
		return securityUnknown
	case flags&apFlagsPrivacy != 0:
		return ffi.SecurityWEP
	}
	return ffi.SecurityNone
}

// statusFromDeviceState maps an NMDeviceState onto a status code.
func statusFromDeviceState(state uint32) int32 {
	switch {
	case state == deviceStateActivated:
		return ffi.StatusConnected
	case state >= deviceStatePrepare && state <= deviceStateSecondaries:
		return ffi.StatusConnecting
	case state == deviceStateUnmanaged, state == deviceStateUnavailable,
		state == deviceStateDisconnected, state == deviceStateDeactivating:
		return ffi.StatusDisconnected
	}
	return ffi.StatusError
}

// supportsAP reports whether WirelessCapabilities advertises AP mode.
func supportsAP(caps uint32) bool {
	return caps&wirelessCapAP != 0
}

// joinSettings builds the connection profile for joining ssid. A nil password
// or an open network gives a profile without security. An empty password is
// kept so NetworkManager rejects it rather than joining unsecured.
func joinSettings(ssid, iface, id string, password *string, security int32) map[string]map[string]interface{} {
	connection := map[string]map[string]interface{}{
		"connection": {
			"id":             ssid,
			"uuid":           id,
			"type":           "802-11-wireless",
			"interface-name": iface,
			"autoconnect":    true,
		},
		"802-11-wireless": {
			"mode": "infrastructure",
			"ssid": []byte(ssid),
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}
	if password == nil || security == ffi.SecurityNone {
		return connection
	}

	connection["802-11-wireless"]["security"] = "802-11-wireless-security"
	switch security {
	case ffi.SecurityWEP:
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "none",
			"wep-key0": *password,
		}
	case ffi.SecurityWPA3:
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "sae",
			"psk":      *password,
		}
	default: // WPA/WPA2
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "wpa-psk",
			"psk":      *password,
		}
	}
	return connection
}

// hotspotSettings builds an open access point profile sharing the host's
// connection.
func hotspotSettings(ssid, iface, id string) map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"connection": {
			"id":             "Hotspot " + ssid,
			"uuid":           id,
			"type":           "802-11-wireless",
			"interface-name": iface,
			"autoconnect":    false,
		},
		"802-11-wireless": {
			"mode": "ap",
			"band": "bg",
			"ssid": []byte(ssid),
		},
		"ipv4": {"method": "shared"},
		"ipv6": {"method": "ignore"},
	}
}

// settingsSSID extracts the SSID of a saved wireless profile, skipping
// access point profiles.
func settingsSSID(s map[string]map[string]interface{}) (string, bool) {
	wireless, ok := s["802-11-wireless"]
	if !ok {
		return "", false
	}
	if mode, ok := wireless["mode"].(string); ok && mode == "ap" {
		return "", false
	}
	ssidBytes, ok := wireless["ssid"].([]byte)
	if !ok || len(ssidBytes) == 0 {
		return "", false
	}
	return string(ssidBytes), true
}
