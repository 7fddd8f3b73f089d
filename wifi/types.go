package wifi

import (
	"fmt"
	"strings"
)

// SecurityType represents the security protocol of a network.
type SecurityType int

const (
	SecurityNone SecurityType = iota
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPA3
	// SecurityUnknown covers every backend code outside the known range.
	SecurityUnknown
)

var securityNames = [...]string{
	SecurityNone:    "None",
	SecurityWEP:     "WEP",
	SecurityWPA:     "WPA",
	SecurityWPA2:    "WPA2",
	SecurityWPA3:    "WPA3",
	SecurityUnknown: "Unknown",
}

func (s SecurityType) String() string {
	if s < 0 || int(s) >= len(securityNames) {
		return securityNames[SecurityUnknown]
	}
	return securityNames[s]
}

// ParseSecurityType is the inverse of SecurityType.String, case-insensitive.
// "open" is accepted as an alias for None.
func ParseSecurityType(s string) (SecurityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "open" {
		return SecurityNone, nil
	}
	for i, name := range securityNames {
		if strings.ToLower(name) == s {
			return SecurityType(i), nil
		}
	}
	return SecurityUnknown, fmt.Errorf("invalid security type %q: %w", s, ErrNotFound)
}

// ConnectionStatus is the backend's view of the station link.
type ConnectionStatus int

const (
	StatusConnected ConnectionStatus = iota
	StatusDisconnected
	StatusConnecting
	// StatusError covers every backend code outside the known range.
	StatusError
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting"
	default:
		return "Error"
	}
}

// NetworkInfo is one scan result. It holds no reference to backend memory.
type NetworkInfo struct {
	SSID           string       `json:"ssid"`
	BSSID          string       `json:"bssid"`
	SignalStrength int          `json:"signal_strength"`
	Security       SecurityType `json:"security"`
	Channel        int          `json:"channel"`
	Frequency      int          `json:"frequency"` // MHz
}

// IsSecure reports whether joining the network requires credentials.
func (n NetworkInfo) IsSecure() bool {
	return n.Security != SecurityNone
}

// MarshalText lets SecurityType render by name in JSON output.
func (s SecurityType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SecurityType) UnmarshalText(b []byte) error {
	v, err := ParseSecurityType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
