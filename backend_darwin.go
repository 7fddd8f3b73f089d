//go:build darwin

package main

import (
	"log/slog"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/darwin"
	"github.com/shazow/wifictl/wifi/inproc"
)

func platformFactory(name string, logger *slog.Logger) (inproc.Factory, error) {
	switch name {
	case "darwin", "auto":
		return darwin.Factory(logger), nil
	}
	return nil, wifi.ErrNotSupported
}
