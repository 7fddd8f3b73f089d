//go:build !(darwin || freebsd || linux || netbsd || windows)

package ffi

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrLibraryNotFound = errors.New("backend library not found")
	ErrSymbolNotFound  = errors.New("backend symbol not found")
	ErrLibraryInUse    = errors.New("backend library has live manager handles")
)

// Dylib is unavailable on this platform; Open never returns one.
type Dylib struct {
	Library
}

// Open always fails on platforms without a dynamic loader.
func Open(path string, logger *slog.Logger) (*Dylib, error) {
	return nil, fmt.Errorf("dynamic loading is not supported on this platform: %w", ErrLibraryNotFound)
}

func (d *Dylib) Close() error { return nil }

func (d *Dylib) Path() string { return "" }
