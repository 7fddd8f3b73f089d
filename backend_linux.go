//go:build linux

package main

import (
	"log/slog"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/inproc"
	"github.com/shazow/wifictl/wifi/iwd"
	"github.com/shazow/wifictl/wifi/networkmanager"
)

func platformFactory(name string, logger *slog.Logger) (inproc.Factory, error) {
	switch name {
	case "networkmanager":
		return networkmanager.Factory(logger), nil
	case "iwd":
		return iwd.Factory(logger), nil
	case "auto":
		return func() (inproc.Driver, error) {
			b, err := networkmanager.New(logger)
			if err == nil {
				return b, nil
			}
			logger.Warn("failed to initialize networkmanager backend, falling back to iwd", "error", err)
			// If networkmanager dbus backend failed to initialize, try the iwd backend
			return iwd.New(logger)
		}, nil
	}
	return nil, wifi.ErrNotSupported
}
