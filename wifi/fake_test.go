package wifi

import (
	"io"
	"log/slog"
	"sync"

	"github.com/shazow/wifictl/wifi/ffi"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type freeCall struct {
	ptr   *ffi.RawNetworkInfo
	count int32
}

type connectCall struct {
	ssid         string
	nullPassword bool
	password     string
}

// fakeLibrary is an ffi.Library that records every call made through it.
type fakeLibrary struct {
	mu sync.Mutex

	handle ffi.Handle

	scanPtr   *ffi.RawNetworkInfo
	scanCount int32

	connectResult    bool
	disconnectResult bool
	status           int32
	hotspotSupported bool
	hotspotActive    bool
	hotspotResult    bool

	calls    []string
	connects []connectCall
	hotspots []string
	frees    []freeCall
	deletes  []ffi.Handle
}

var _ ffi.Library = (*fakeLibrary)(nil)

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{handle: 0xf00d, hotspotResult: true}
}

// cstr returns a NUL-terminated copy of s.
func cstr(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}

func (f *fakeLibrary) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeLibrary) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLibrary) Deletes() []ffi.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ffi.Handle(nil), f.deletes...)
}

func (f *fakeLibrary) ManagerNew() ffi.Handle {
	f.record("ManagerNew")
	return f.handle
}

func (f *fakeLibrary) ManagerDelete(h ffi.Handle) {
	f.record("ManagerDelete")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, h)
}

func (f *fakeLibrary) Scan(h ffi.Handle, count *int32) *ffi.RawNetworkInfo {
	f.record("Scan")
	*count = f.scanCount
	return f.scanPtr
}

func (f *fakeLibrary) Connect(h ffi.Handle, ssid, password *byte) bool {
	f.record("Connect")
	c := connectCall{nullPassword: password == nil}
	c.ssid, _ = decodeString(ssid)
	if password != nil {
		c.password, _ = decodeString(password)
	}
	f.connects = append(f.connects, c)
	return f.connectResult
}

func (f *fakeLibrary) Disconnect(h ffi.Handle) bool {
	f.record("Disconnect")
	return f.disconnectResult
}

func (f *fakeLibrary) Status(h ffi.Handle) int32 {
	f.record("Status")
	return f.status
}

func (f *fakeLibrary) FreeNetworkInfo(networks *ffi.RawNetworkInfo, count int32) {
	f.record("FreeNetworkInfo")
	f.frees = append(f.frees, freeCall{networks, count})
}

func (f *fakeLibrary) CreateHotspot(h ffi.Handle, ssid *byte) bool {
	f.record("CreateHotspot")
	s, _ := decodeString(ssid)
	f.hotspots = append(f.hotspots, s)
	if f.hotspotResult {
		f.hotspotActive = true
	}
	return f.hotspotResult
}

func (f *fakeLibrary) StopHotspot(h ffi.Handle) bool {
	f.record("StopHotspot")
	f.hotspotActive = false
	return true
}

func (f *fakeLibrary) IsHotspotActive(h ffi.Handle) bool {
	f.record("IsHotspotActive")
	return f.hotspotActive
}

func (f *fakeLibrary) IsHotspotSupported(h ffi.Handle) bool {
	f.record("IsHotspotSupported")
	return f.hotspotSupported
}
