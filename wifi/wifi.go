// Package wifi is a safe facade over the native WiFi backend.
//
// A WiFi owns exactly one backend manager handle. Strings are copied into
// NUL-terminated buffers on the way in, scan arrays are copied out and handed
// back to the backend before Scan returns, and integer codes are decoded into
// closed enumerations. Boolean results are passed through from the backend
// untouched: the facade does not validate or retry.
package wifi

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/shazow/wifictl/wifi/ffi"
)

// WiFi is one backend session.
//
// A WiFi is not safe for concurrent use. The backend makes no promise about
// calls racing on the same handle, so callers that share one must serialize
// access themselves.
type WiFi struct {
	lib     ffi.Library
	logger  *slog.Logger
	handle  ffi.Handle
	state   handleState
	cleanup runtime.Cleanup
}

// New creates the backend manager handle. The returned WiFi is never nil; if
// the backend could not create a handle the error wraps ErrInvalidHandle and
// every method of the WiFi fails with ErrInvalidHandle without reaching the
// backend.
func New(lib ffi.Library, logger *slog.Logger) (*WiFi, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &WiFi{lib: lib, logger: logger}
	if !w.acquire() {
		return w, fmt.Errorf("creating wifi manager: %w", ErrInvalidHandle)
	}
	return w, nil
}

// Close destroys the backend handle. It is safe to call more than once, and
// must happen before the library itself is unloaded.
func (w *WiFi) Close() error {
	w.release()
	return nil
}

// Scan returns the networks currently visible. No networks in range is an
// empty slice, not an error.
func (w *WiFi) Scan() ([]NetworkInfo, error) {
	h, err := w.active()
	if err != nil {
		return nil, err
	}
	var count int32
	raw := w.lib.Scan(h, &count)
	networks := decodeNetworks(w.lib, raw, count, w.logger)
	w.logger.Debug("scan complete", "count", len(networks))
	return networks, nil
}

// Connect joins ssid. A nil password reaches the backend as a null pointer,
// while a pointer to "" is sent as an empty buffer; backends treat these
// differently. Strings containing a NUL byte fail with an *EncodingError
// before the backend is called.
func (w *WiFi) Connect(ssid string, password *string) (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	ssidBuf, err := encodeString("ssid", ssid)
	if err != nil {
		return false, err
	}
	passBuf, err := encodeOptional("password", password)
	if err != nil {
		return false, err
	}

	ok := w.lib.Connect(h, bufferPtr(ssidBuf), bufferPtr(passBuf))
	runtime.KeepAlive(ssidBuf)
	runtime.KeepAlive(passBuf)

	w.logger.Debug("connect", "ssid", ssid, "password", password != nil, "ok", ok)
	return ok, nil
}

// Disconnect drops the current station link.
func (w *WiFi) Disconnect() (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	ok := w.lib.Disconnect(h)
	w.logger.Debug("disconnect", "ok", ok)
	return ok, nil
}

// Status reports the station link. Codes the backend does not document decode
// to StatusError.
func (w *WiFi) Status() (ConnectionStatus, error) {
	h, err := w.active()
	if err != nil {
		return StatusError, err
	}
	return decodeStatus(w.lib.Status(h)), nil
}

// IsHotspotSupported reports whether the device can run an access point.
func (w *WiFi) IsHotspotSupported() (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	return w.lib.IsHotspotSupported(h), nil
}

// IsHotspotActive reports whether an access point is currently running.
func (w *WiFi) IsHotspotActive() (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	return w.lib.IsHotspotActive(h), nil
}

// CreateHotspot starts an open access point named ssid. There is no password:
// the backend only runs unsecured hotspots.
func (w *WiFi) CreateHotspot(ssid string) (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	ssidBuf, err := encodeString("ssid", ssid)
	if err != nil {
		return false, err
	}

	ok := w.lib.CreateHotspot(h, bufferPtr(ssidBuf))
	runtime.KeepAlive(ssidBuf)

	w.logger.Debug("create hotspot", "ssid", ssid, "ok", ok)
	return ok, nil
}

// StopHotspot stops the access point. Backends report true when none was
// running.
func (w *WiFi) StopHotspot() (bool, error) {
	h, err := w.active()
	if err != nil {
		return false, err
	}
	ok := w.lib.StopHotspot(h)
	w.logger.Debug("stop hotspot", "ok", ok)
	return ok, nil
}
