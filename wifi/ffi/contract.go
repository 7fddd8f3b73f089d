// Package ffi declares the C-compatible surface exposed by the native wificpp
// backend. It carries no decoding logic: the wifi package owns marshalling and
// the lifetime rules for everything that crosses this boundary.
package ffi

// Handle is the opaque manager pointer returned by wifi_manager_new. The zero
// value is the null handle.
type Handle uintptr

// RawNetworkInfo mirrors the backend's WifiNetworkInfo struct:
//
//	typedef struct {
//	    const char* ssid;
//	    const char* bssid;
//	    int signal_strength;
//	    int security_type;
//	    int channel;
//	    int frequency;
//	} WifiNetworkInfo;
type RawNetworkInfo struct {
	SSID           *byte
	BSSID          *byte
	SignalStrength int32
	SecurityType   int32
	Channel        int32
	Frequency      int32
}

// Security codes as reported in RawNetworkInfo.SecurityType.
const (
	SecurityNone int32 = iota
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPA3
)

// Status codes returned by wifi_manager_get_status.
const (
	StatusConnected int32 = iota
	StatusDisconnected
	StatusConnecting
	StatusError
)

// Exported symbol names.
const (
	SymManagerNew         = "wifi_manager_new"
	SymManagerDelete      = "wifi_manager_delete"
	SymScan               = "wifi_manager_scan"
	SymConnect            = "wifi_manager_connect"
	SymDisconnect         = "wifi_manager_disconnect"
	SymGetStatus          = "wifi_manager_get_status"
	SymFreeNetworkInfo    = "wifi_free_network_info"
	SymCreateHotspot      = "wifi_manager_create_hotspot"
	SymStopHotspot        = "wifi_manager_stop_hotspot"
	SymIsHotspotActive    = "wifi_manager_is_hotspot_active"
	SymIsHotspotSupported = "wifi_manager_is_hotspot_supported"
)

// Symbols lists every entry point a backend library must export.
var Symbols = []string{
	SymManagerNew,
	SymManagerDelete,
	SymScan,
	SymConnect,
	SymDisconnect,
	SymGetStatus,
	SymFreeNetworkInfo,
	SymCreateHotspot,
	SymStopHotspot,
	SymIsHotspotActive,
	SymIsHotspotSupported,
}

// Library is one method per backend entry point, parameter for parameter.
//
// String arguments are NUL-terminated buffers; a nil *byte is a null pointer.
// The array returned by Scan is owned by the backend and must be handed back
// through FreeNetworkInfo with the same pointer and count.
type Library interface {
	ManagerNew() Handle
	ManagerDelete(h Handle)
	Scan(h Handle, count *int32) *RawNetworkInfo
	Connect(h Handle, ssid, password *byte) bool
	Disconnect(h Handle) bool
	Status(h Handle) int32
	FreeNetworkInfo(networks *RawNetworkInfo, count int32)
	CreateHotspot(h Handle, ssid *byte) bool
	StopHotspot(h Handle) bool
	IsHotspotActive(h Handle) bool
	IsHotspotSupported(h Handle) bool
}
