//go:build !linux && !darwin

package main

import (
	"log/slog"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/inproc"
)

// platformFactory has no built-in drivers to offer on this operating system;
// only the native library and the mock are available.
func platformFactory(name string, logger *slog.Logger) (inproc.Factory, error) {
	return nil, wifi.ErrNotSupported
}
