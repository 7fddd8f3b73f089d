//go:build windows

package ffi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// wificpp links against the native WLAN API; load it first so the backend's
// imports resolve even when it was not found on the default search path.
const systemWifiLibrary = "wlanapi.dll"

func openLibrary(path string) (uintptr, error) {
	if _, err := windows.LoadLibrary(systemWifiLibrary); err != nil {
		return 0, fmt.Errorf("loading %s: %w", systemWifiLibrary, err)
	}
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func closeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
