package wifi

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifictl/wifi/ffi"
)

func newTestWiFi(t *testing.T) (*WiFi, *fakeLibrary) {
	t.Helper()
	lib := newFakeLibrary()
	w, err := New(lib, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, lib
}

func TestNewInvalidHandle(t *testing.T) {
	lib := newFakeLibrary()
	lib.handle = 0

	w, err := New(lib, discardLogger)
	require.NotNil(t, w)
	require.ErrorIs(t, err, ErrInvalidHandle)

	_, err = w.Scan()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.Connect("Home", nil)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.Disconnect()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	status, err := w.Status()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, StatusError, status)
	_, err = w.IsHotspotSupported()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.IsHotspotActive()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.CreateHotspot("Spot")
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = w.StopHotspot()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.NoError(t, w.Close())

	assert.Equal(t, []string{"ManagerNew"}, lib.Calls())
}

func TestCloseDestroysOnce(t *testing.T) {
	lib := newFakeLibrary()
	w, err := New(lib, discardLogger)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, []ffi.Handle{0xf00d}, lib.Deletes())

	_, err = w.Scan()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.StopHotspot()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, []string{"ManagerNew", "ManagerDelete"}, lib.Calls())
}

func TestUnclosedHandleIsReleased(t *testing.T) {
	lib := newFakeLibrary()
	func() {
		_, err := New(lib, discardLogger)
		require.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return len(lib.Deletes()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []ffi.Handle{0xf00d}, lib.Deletes())
}

func TestScan(t *testing.T) {
	w, lib := newTestWiFi(t)
	records := []ffi.RawNetworkInfo{
		{SSID: cstr("Home"), BSSID: cstr("AA:BB"), SignalStrength: 80, SecurityType: 3, Channel: 6, Frequency: 2437},
		{SSID: nil, BSSID: cstr("CC:DD"), SignalStrength: 40, SecurityType: 99, Channel: 11, Frequency: 2462},
	}
	lib.scanPtr, lib.scanCount = &records[0], 2

	networks, err := w.Scan()
	require.NoError(t, err)
	assert.Equal(t, []NetworkInfo{
		{SSID: "Home", BSSID: "AA:BB", SignalStrength: 80, Security: SecurityWPA2, Channel: 6, Frequency: 2437},
		{SSID: "", BSSID: "CC:DD", SignalStrength: 40, Security: SecurityUnknown, Channel: 11, Frequency: 2462},
	}, networks)
	assert.Equal(t, []string{"ManagerNew", "Scan", "FreeNetworkInfo"}, lib.Calls())
	assert.Equal(t, []freeCall{{&records[0], 2}}, lib.frees)

	// Each scan is one backend scan and one release.
	_, err = w.Scan()
	require.NoError(t, err)
	assert.Len(t, lib.frees, 2)
}

func TestScanNoNetworks(t *testing.T) {
	w, lib := newTestWiFi(t)

	networks, err := w.Scan()
	require.NoError(t, err)
	assert.NotNil(t, networks)
	assert.Empty(t, networks)
	assert.Empty(t, lib.frees)
}

func TestConnectPassword(t *testing.T) {
	w, lib := newTestWiFi(t)
	lib.connectResult = true

	empty := ""
	secret := "hunter2"

	ok, err := w.Connect("Cafe", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = w.Connect("Cafe", &empty)
	require.NoError(t, err)
	_, err = w.Connect("Home", &secret)
	require.NoError(t, err)

	assert.Equal(t, []connectCall{
		{ssid: "Cafe", nullPassword: true},
		{ssid: "Cafe", nullPassword: false, password: ""},
		{ssid: "Home", nullPassword: false, password: "hunter2"},
	}, lib.connects)
}

func TestConnectFailureIsPassedThrough(t *testing.T) {
	w, lib := newTestWiFi(t)
	lib.connectResult = false

	ok, err := w.Connect("Home", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbeddedNulNeverReachesBackend(t *testing.T) {
	w, lib := newTestWiFi(t)
	bad := "pass\x00word"

	_, err := w.Connect("Ho\x00me", nil)
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "ssid", encErr.Field)

	_, err = w.Connect("Home", &bad)
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "password", encErr.Field)
	assert.Equal(t, 4, encErr.Offset)

	_, err = w.CreateHotspot("\x00")
	assert.ErrorIs(t, err, ErrEncoding)

	assert.Equal(t, []string{"ManagerNew"}, lib.Calls())
}

func TestStatus(t *testing.T) {
	w, lib := newTestWiFi(t)
	for code, want := range map[int32]ConnectionStatus{
		0:  StatusConnected,
		1:  StatusDisconnected,
		2:  StatusConnecting,
		3:  StatusError,
		17: StatusError,
	} {
		lib.status = code
		got, err := w.Status()
		require.NoError(t, err)
		assert.Equal(t, want, got, "code %d", code)
	}
}

func TestHotspot(t *testing.T) {
	w, lib := newTestWiFi(t)
	lib.hotspotSupported = true

	supported, err := w.IsHotspotSupported()
	require.NoError(t, err)
	assert.True(t, supported)

	active, err := w.IsHotspotActive()
	require.NoError(t, err)
	assert.False(t, active)

	// Stopping with nothing running is a pass-through.
	ok, err := w.StopHotspot()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, lib.hotspots)

	ok, err = w.CreateHotspot("RustHotspot")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"RustHotspot"}, lib.hotspots)

	active, err = w.IsHotspotActive()
	require.NoError(t, err)
	assert.True(t, active)

	ok, err = w.StopHotspot()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisconnect(t *testing.T) {
	w, lib := newTestWiFi(t)
	lib.disconnectResult = true

	ok, err := w.Disconnect()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"ManagerNew", "Disconnect"}, lib.Calls())
}
