package subsystem

import (
	"errors"
	"sync"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
)

var errBoom = errors.New("boom")

// fakeWifi settles immediately unless pending is set.
type fakeWifi struct {
	state   device.WifiState
	readErr error
	setErr  error
	sets    []bool
}

func (f *fakeWifi) WifiState() (device.WifiState, error) {
	return f.state, f.readErr
}

func (f *fakeWifi) SetWifiEnabled(enabled bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, enabled)
	if enabled {
		f.state = device.WifiEnabled
	} else {
		f.state = device.WifiDisabled
	}
	return nil
}

type fakeStore struct {
	ints      map[string]int
	providers map[string]bool
	intErr    error
	putErr    error
	locErr    error
	puts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{ints: map[string]int{}, providers: map[string]bool{}}
}

func (f *fakeStore) Int(key string) (int, error) {
	if f.intErr != nil {
		return 0, f.intErr
	}
	v, ok := f.ints[key]
	if !ok {
		return 0, device.ErrServiceUnavailable
	}
	return v, nil
}

func (f *fakeStore) PutInt(key string, value int) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.ints[key] = value
	return nil
}

func (f *fakeStore) LocationProviderEnabled(provider string) (bool, error) {
	return f.providers[provider], f.locErr
}

func (f *fakeStore) SetLocationProviderEnabled(provider string, enabled bool) error {
	if f.locErr != nil {
		return f.locErr
	}
	f.providers[provider] = enabled
	return nil
}

type fakePower struct {
	overrides []int
	err       error
}

func (f *fakePower) SetScreenBrightnessOverride(value int) error {
	if f.err != nil {
		return f.err
	}
	f.overrides = append(f.overrides, value)
	return nil
}

type fakeConn struct {
	allowed bool
	readErr error
	setErr  error
}

func (f *fakeConn) BackgroundDataSetting() (bool, error) {
	return f.allowed, f.readErr
}

func (f *fakeConn) SetBackgroundDataSetting(allowed bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.allowed = allowed
	return nil
}

type fakeContent struct {
	calls []bool
	err   error
}

func (f *fakeContent) SetListenForNetworkTickles(listen bool) error {
	f.calls = append(f.calls, listen)
	return f.err
}

type fakeRadio struct {
	mu      sync.Mutex
	state   device.RadioState
	readErr error
	sets    []bool
}

func (f *fakeRadio) RadioState() (device.RadioState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.readErr
}

func (f *fakeRadio) SetRadioEnabled(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, enabled)
	if enabled {
		f.state = device.RadioOn
	} else {
		f.state = device.RadioOff
	}
	return nil
}
