package wifi

import (
	"log/slog"
	"strings"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/text/encoding/unicode"

	"github.com/shazow/wifictl/wifi/ffi"
)

// maxStringLen bounds the NUL search in backend strings.
const maxStringLen = 1 << 20

// encodeString copies s into a NUL-terminated buffer. The empty string
// encodes to a one byte buffer, never to nil.
func encodeString(field, s string) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, &EncodingError{Field: field, Offset: i}
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, nil
}

// encodeOptional is encodeString where nil stays nil, so an absent value
// reaches the backend as a null pointer and "" as an empty buffer.
func encodeOptional(field string, s *string) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return encodeString(field, *s)
}

func bufferPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// decodeString copies a NUL-terminated backend string. A nil pointer is the
// empty string. Invalid UTF-8 is replaced with U+FFFD and reported as
// malformed rather than rejected.
func decodeString(p *byte) (s string, malformed bool) {
	if p == nil {
		return "", false
	}
	n := 0
	for n < maxStringLen && *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	raw := unsafe.Slice(p, n)
	if utf8.Valid(raw) {
		return string(raw), false
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
	}
	return string(decoded), true
}

func decodeSecurity(code int32) SecurityType {
	switch code {
	case ffi.SecurityNone:
		return SecurityNone
	case ffi.SecurityWEP:
		return SecurityWEP
	case ffi.SecurityWPA:
		return SecurityWPA
	case ffi.SecurityWPA2:
		return SecurityWPA2
	case ffi.SecurityWPA3:
		return SecurityWPA3
	}
	return SecurityUnknown
}

func decodeStatus(code int32) ConnectionStatus {
	switch code {
	case ffi.StatusConnected:
		return StatusConnected
	case ffi.StatusDisconnected:
		return StatusDisconnected
	case ffi.StatusConnecting:
		return StatusConnecting
	}
	return StatusError
}

func decodeNetwork(r *ffi.RawNetworkInfo, index int, logger *slog.Logger) NetworkInfo {
	ssid, badSSID := decodeString(r.SSID)
	bssid, badBSSID := decodeString(r.BSSID)
	if badSSID || badBSSID {
		logger.Debug("malformed scan record", "index", index, "ssid", ssid, "bssid", bssid)
	}
	return NetworkInfo{
		SSID:           ssid,
		BSSID:          bssid,
		SignalStrength: int(r.SignalStrength),
		Security:       decodeSecurity(r.SecurityType),
		Channel:        int(r.Channel),
		Frequency:      int(r.Frequency),
	}
}

// decodeNetworks copies count records out of a backend scan array and hands
// the array back to the backend exactly once. A nil array or a non-positive
// count means no results; there is nothing to release in that case and the
// backend is not called.
func decodeNetworks(lib ffi.Library, raw *ffi.RawNetworkInfo, count int32, logger *slog.Logger) []NetworkInfo {
	if raw == nil || count <= 0 {
		return []NetworkInfo{}
	}
	defer lib.FreeNetworkInfo(raw, count)

	records := unsafe.Slice(raw, count)
	networks := make([]NetworkInfo, 0, len(records))
	for i := range records {
		networks = append(networks, decodeNetwork(&records[i], i, logger))
	}
	return networks
}
