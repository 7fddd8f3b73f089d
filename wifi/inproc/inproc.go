// Package inproc serves Go-implemented WiFi drivers through the ffi.Library
// contract, so they are driven by the same wifi facade as the native backend.
//
// The Library behaves like a careful C backend: it hands out scan arrays that
// stay valid until FreeNetworkInfo, and it records every contract violation
// it sees (double free, unknown handle, count mismatch) instead of crashing.
package inproc

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/shazow/wifictl/wifi/ffi"
)

// Driver is a WiFi backend written in Go. Status and security values use the
// ffi codes.
type Driver interface {
	Scan() []Record
	Connect(ssid string, password *string) bool
	Disconnect() bool
	Status() int32
	CreateHotspot(ssid string) bool
	StopHotspot() bool
	IsHotspotActive() bool
	IsHotspotSupported() bool
	Close() error
}

// Record is one scan result as a driver reports it. A nil SSID or BSSID
// reaches the caller as a null pointer.
type Record struct {
	SSID      *string
	BSSID     *string
	Signal    int32
	Security  int32
	Channel   int32
	Frequency int32
}

// Factory opens a driver for a new manager handle.
type Factory func() (Driver, error)

// Stats counts calls across the boundary.
type Stats struct {
	HandlesCreated   int
	HandlesDestroyed int
	Scans            int
	Frees            int
	// Outstanding is the number of scan arrays not yet freed.
	Outstanding int
}

// Violation is a misuse of the contract by the caller.
type Violation struct {
	Op     string
	Detail string
}

func (v Violation) String() string {
	return v.Op + ": " + v.Detail
}

// scanBuffer keeps a scan array and the strings it points at alive until the
// caller frees it.
type scanBuffer struct {
	records []ffi.RawNetworkInfo
	strings [][]byte
}

// Library implements ffi.Library on top of Drivers.
type Library struct {
	factory Factory
	logger  *slog.Logger

	mu         sync.Mutex
	nextHandle ffi.Handle
	drivers    map[ffi.Handle]Driver
	buffers    map[*ffi.RawNetworkInfo]*scanBuffer
	stats      Stats
	violations []Violation
}

var _ ffi.Library = (*Library)(nil)

// New returns a Library that opens a driver from factory for every handle.
func New(factory Factory, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		factory: factory,
		logger:  logger,
		drivers: make(map[ffi.Handle]Driver),
		buffers: make(map[*ffi.RawNetworkInfo]*scanBuffer),
	}
}

// Stats returns a snapshot of the call counters.
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Violations returns every contract misuse seen so far.
func (l *Library) Violations() []Violation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Violation(nil), l.violations...)
}

func (l *Library) violation(op, format string, args ...any) {
	v := Violation{Op: op, Detail: fmt.Sprintf(format, args...)}
	l.violations = append(l.violations, v)
	l.logger.Error("backend contract violation", "op", op, "detail", v.Detail)
}

// driver looks up h. Callers hold l.mu.
func (l *Library) driver(op string, h ffi.Handle) Driver {
	d, ok := l.drivers[h]
	if !ok {
		l.violation(op, "unknown handle %#x", uintptr(h))
	}
	return d
}

// lookup is driver for methods that call into the driver without the lock.
func (l *Library) lookup(op string, h ffi.Handle) Driver {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.driver(op, h)
}

func (l *Library) ManagerNew() ffi.Handle {
	d, err := l.factory()
	if err != nil {
		l.logger.Error("failed to open driver", "err", err)
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextHandle++
	h := l.nextHandle
	l.drivers[h] = d
	l.stats.HandlesCreated++
	return h
}

func (l *Library) ManagerDelete(h ffi.Handle) {
	l.mu.Lock()
	d := l.driver(ffi.SymManagerDelete, h)
	if d != nil {
		delete(l.drivers, h)
		l.stats.HandlesDestroyed++
	}
	l.mu.Unlock()

	if d == nil {
		return
	}
	if err := d.Close(); err != nil {
		l.logger.Warn("failed to close driver", "err", err)
	}
}

func (l *Library) Scan(h ffi.Handle, count *int32) *ffi.RawNetworkInfo {
	*count = 0
	d := l.lookup(ffi.SymScan, h)
	if d == nil {
		return nil
	}
	records := d.Scan()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Scans++
	if len(records) == 0 {
		return nil
	}

	buf := &scanBuffer{records: make([]ffi.RawNetworkInfo, len(records))}
	for i, r := range records {
		buf.records[i] = ffi.RawNetworkInfo{
			SSID:           buf.cString(r.SSID),
			BSSID:          buf.cString(r.BSSID),
			SignalStrength: r.Signal,
			SecurityType:   r.Security,
			Channel:        r.Channel,
			Frequency:      r.Frequency,
		}
	}
	ptr := &buf.records[0]
	l.buffers[ptr] = buf
	l.stats.Outstanding++
	*count = int32(len(records))
	return ptr
}

func (l *Library) FreeNetworkInfo(networks *ffi.RawNetworkInfo, count int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if networks == nil {
		l.violation(ffi.SymFreeNetworkInfo, "null buffer with count %d", count)
		return
	}
	buf, ok := l.buffers[networks]
	if !ok {
		l.violation(ffi.SymFreeNetworkInfo, "unknown or already freed buffer %p", networks)
		return
	}
	if int(count) != len(buf.records) {
		l.violation(ffi.SymFreeNetworkInfo, "count %d does not match %d records", count, len(buf.records))
	}
	delete(l.buffers, networks)
	l.stats.Frees++
	l.stats.Outstanding--
}

func (l *Library) Connect(h ffi.Handle, ssid, password *byte) bool {
	d := l.lookup(ffi.SymConnect, h)
	if d == nil {
		return false
	}
	if ssid == nil {
		l.mu.Lock()
		l.violation(ffi.SymConnect, "null ssid")
		l.mu.Unlock()
		return false
	}
	var pass *string
	if password != nil {
		p := goString(password)
		pass = &p
	}
	return d.Connect(goString(ssid), pass)
}

func (l *Library) Disconnect(h ffi.Handle) bool {
	d := l.lookup(ffi.SymDisconnect, h)
	if d == nil {
		return false
	}
	return d.Disconnect()
}

func (l *Library) Status(h ffi.Handle) int32 {
	d := l.lookup(ffi.SymGetStatus, h)
	if d == nil {
		return ffi.StatusError
	}
	return d.Status()
}

func (l *Library) CreateHotspot(h ffi.Handle, ssid *byte) bool {
	d := l.lookup(ffi.SymCreateHotspot, h)
	if d == nil {
		return false
	}
	if ssid == nil {
		l.mu.Lock()
		l.violation(ffi.SymCreateHotspot, "null ssid")
		l.mu.Unlock()
		return false
	}
	return d.CreateHotspot(goString(ssid))
}

func (l *Library) StopHotspot(h ffi.Handle) bool {
	d := l.lookup(ffi.SymStopHotspot, h)
	if d == nil {
		return false
	}
	return d.StopHotspot()
}

func (l *Library) IsHotspotActive(h ffi.Handle) bool {
	d := l.lookup(ffi.SymIsHotspotActive, h)
	if d == nil {
		return false
	}
	return d.IsHotspotActive()
}

func (l *Library) IsHotspotSupported(h ffi.Handle) bool {
	d := l.lookup(ffi.SymIsHotspotSupported, h)
	if d == nil {
		return false
	}
	return d.IsHotspotSupported()
}

func (b *scanBuffer) cString(s *string) *byte {
	if s == nil {
		return nil
	}
	c := make([]byte, len(*s)+1)
	copy(c, *s)
	b.strings = append(b.strings, c)
	return &c[0]
}

// goString copies a NUL-terminated buffer. Drivers get the bytes as sent.
func goString(p *byte) string {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
