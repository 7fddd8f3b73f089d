package main

import (
	"fmt"
	"log/slog"

	"github.com/shazow/wifictl/wifi/ffi"
	"github.com/shazow/wifictl/wifi/inproc"
	"github.com/shazow/wifictl/wifi/mock"
)

// backendNames lists the values accepted by --backend.
var backendNames = []string{"auto", "native", "mock", "networkmanager", "iwd", "darwin"}

func noClose() error { return nil }

// openLibrary resolves a backend name to the library the wifi facade talks
// to. The returned close function must be called once the WiFi built on top
// of the library has been closed.
func openLibrary(name, libPath string, logger *slog.Logger) (ffi.Library, func() error, error) {
	switch name {
	case "native":
		lib, err := ffi.Open(ffi.LibraryPath(libPath), logger)
		if err != nil {
			return nil, nil, err
		}
		return lib, lib.Close, nil
	case "mock":
		return inproc.New(mock.Factory(mock.New()), logger), noClose, nil
	case "auto":
		lib, err := ffi.Open(ffi.LibraryPath(libPath), logger)
		if err == nil {
			logger.Debug("using native backend", "path", lib.Path())
			return lib, lib.Close, nil
		}
		logger.Debug("native backend unavailable, using a built-in driver", "error", err)
	}

	factory, err := platformFactory(name, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return inproc.New(factory, logger), noClose, nil
}
