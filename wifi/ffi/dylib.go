//go:build darwin || freebsd || linux || netbsd || windows

package ffi

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

// EnvLibraryPath overrides the library search.
const EnvLibraryPath = "WIFICTL_LIB"

var (
	ErrLibraryNotFound = errors.New("backend library not found")
	ErrSymbolNotFound  = errors.New("backend symbol not found")
	// ErrLibraryInUse is returned by Close while manager handles are alive.
	ErrLibraryInUse = errors.New("backend library has live manager handles")
)

// Dylib is a Library backed by a dynamically loaded wificpp build.
type Dylib struct {
	path   string
	handle uintptr
	logger *slog.Logger

	// managers counts handles from ManagerNew not yet passed to ManagerDelete.
	managers atomic.Int64

	managerNew         func() uintptr
	managerDelete      func(uintptr)
	scan               func(uintptr, *int32) unsafe.Pointer
	connect            func(uintptr, *byte, *byte) bool
	disconnect         func(uintptr) bool
	getStatus          func(uintptr) int32
	freeNetworkInfo    func(unsafe.Pointer, int32)
	createHotspot      func(uintptr, *byte) bool
	stopHotspot        func(uintptr) bool
	isHotspotActive    func(uintptr) bool
	isHotspotSupported func(uintptr) bool
}

var _ Library = (*Dylib)(nil)

// LibraryName returns the platform file name of the backend library.
func LibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libwificpp.dylib"
	case "windows":
		return "wificpp.dll"
	default:
		return "libwificpp.so"
	}
}

// LibraryPath resolves the backend library. An explicit path wins, then
// $WIFICTL_LIB, then the working directory and the directory of the running
// executable, which is where the build drops the runtime artifact. When
// nothing is found the bare name is returned so the system loader can search.
func LibraryPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := os.Getenv(EnvLibraryPath); path != "" {
		return path
	}

	name := LibraryName()
	searchPaths := []string{name}
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, name),
			filepath.Join(execDir, "..", "lib", name),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return name
}

// Open loads the backend library at path (see LibraryPath) and binds every
// entry point. A missing symbol is reported as an error.
func Open(path string, logger *slog.Logger) (*Dylib, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path = LibraryPath(path)
	logger.Debug("loading backend library", "path", path)

	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrLibraryNotFound, err)
	}

	d := &Dylib{path: path, handle: handle, logger: logger}
	bindings := []struct {
		fptr any
		name string
	}{
		{&d.managerNew, SymManagerNew},
		{&d.managerDelete, SymManagerDelete},
		{&d.scan, SymScan},
		{&d.connect, SymConnect},
		{&d.disconnect, SymDisconnect},
		{&d.getStatus, SymGetStatus},
		{&d.freeNetworkInfo, SymFreeNetworkInfo},
		{&d.createHotspot, SymCreateHotspot},
		{&d.stopHotspot, SymStopHotspot},
		{&d.isHotspotActive, SymIsHotspotActive},
		{&d.isHotspotSupported, SymIsHotspotSupported},
	}
	for _, b := range bindings {
		sym, err := lookupSymbol(handle, b.name)
		if err != nil || sym == 0 {
			closeLibrary(handle)
			if err == nil {
				err = errors.New("null address")
			}
			return nil, fmt.Errorf("%s in %s: %w: %w", b.name, path, ErrSymbolNotFound, err)
		}
		purego.RegisterFunc(b.fptr, sym)
	}

	logger.Info("backend library loaded", "path", path)
	return d, nil
}

// Path is the file the library was loaded from.
func (d *Dylib) Path() string {
	return d.path
}

// Close unloads the library. It fails with ErrLibraryInUse and leaves the
// library loaded while any Handle created from it is still alive, since a
// leaked wifi.WiFi destroys its handle later from a runtime cleanup.
func (d *Dylib) Close() error {
	if d.handle == 0 {
		return nil
	}
	if n := d.managers.Load(); n > 0 {
		return fmt.Errorf("%s: %d handles: %w", d.path, n, ErrLibraryInUse)
	}
	err := closeLibrary(d.handle)
	d.handle = 0
	return err
}

func (d *Dylib) ManagerNew() Handle {
	h := Handle(d.managerNew())
	if h != 0 {
		d.managers.Add(1)
	}
	return h
}

func (d *Dylib) ManagerDelete(h Handle) {
	d.managerDelete(uintptr(h))
	if h != 0 {
		d.managers.Add(-1)
	}
}

func (d *Dylib) Scan(h Handle, count *int32) *RawNetworkInfo {
	return (*RawNetworkInfo)(d.scan(uintptr(h), count))
}

func (d *Dylib) Connect(h Handle, ssid, password *byte) bool {
	return d.connect(uintptr(h), ssid, password)
}

func (d *Dylib) Disconnect(h Handle) bool {
	return d.disconnect(uintptr(h))
}

func (d *Dylib) Status(h Handle) int32 {
	return d.getStatus(uintptr(h))
}

func (d *Dylib) FreeNetworkInfo(networks *RawNetworkInfo, count int32) {
	d.freeNetworkInfo(unsafe.Pointer(networks), count)
}

func (d *Dylib) CreateHotspot(h Handle, ssid *byte) bool {
	return d.createHotspot(uintptr(h), ssid)
}

func (d *Dylib) StopHotspot(h Handle) bool {
	return d.stopHotspot(uintptr(h))
}

func (d *Dylib) IsHotspotActive(h Handle) bool {
	return d.isHotspotActive(uintptr(h))
}

func (d *Dylib) IsHotspotSupported(h Handle) bool {
	return d.isHotspotSupported(uintptr(h))
}
