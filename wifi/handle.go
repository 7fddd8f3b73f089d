package wifi

import (
	"log/slog"
	"runtime"

	"github.com/shazow/wifictl/wifi/ffi"
)

type handleState int

const (
	handleUninitialized handleState = iota
	handleActive
	handleDestroyed
)

// leakedHandle is what the runtime cleanup needs to destroy a handle whose
// WiFi was never closed. It must not reference the WiFi itself.
type leakedHandle struct {
	lib    ffi.Library
	handle ffi.Handle
	logger *slog.Logger
}

func releaseLeaked(l leakedHandle) {
	l.logger.Warn("wifi manager was not closed, destroying backend handle")
	l.lib.ManagerDelete(l.handle)
}

// acquire creates the backend handle. It runs once, from New. A null handle
// leaves w uninitialized for good.
func (w *WiFi) acquire() bool {
	h := w.lib.ManagerNew()
	if h == 0 {
		w.logger.Error("backend returned a null manager handle")
		return false
	}
	w.handle = h
	w.state = handleActive
	w.cleanup = runtime.AddCleanup(w, releaseLeaked, leakedHandle{lib: w.lib, handle: h, logger: w.logger})
	return true
}

// active returns the handle for a foreign call, or the reason there is none.
func (w *WiFi) active() (ffi.Handle, error) {
	switch w.state {
	case handleActive:
		return w.handle, nil
	case handleDestroyed:
		return 0, ErrClosed
	default:
		return 0, ErrInvalidHandle
	}
}

// release destroys the handle if it is live. Later calls do nothing.
func (w *WiFi) release() {
	if w.state != handleActive {
		return
	}
	w.cleanup.Stop()
	w.lib.ManagerDelete(w.handle)
	w.handle = 0
	w.state = handleDestroyed
}
