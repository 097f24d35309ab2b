package sim

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/store"
)

var (
	_ device.WifiService         = (*Device)(nil)
	_ device.PowerService        = (*Device)(nil)
	_ device.ConnectivityService = (*Device)(nil)
	_ device.ContentService      = (*Device)(nil)
	_ device.RadioManager        = (*Device)(nil)
)

func newDevice(t *testing.T, opts Options) *Device {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	d := New(s, opts, log.Nop())
	t.Cleanup(d.Close)
	return d
}

func waitEvent(t *testing.T, d *Device, want string) {
	t.Helper()
	select {
	case got := <-d.Events():
		if got != want {
			t.Fatalf("expected event %s, got %s", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s event", want)
	}
}

func TestWifiTransition(t *testing.T) {
	d := newDevice(t, Options{Transition: 20 * time.Millisecond, WifiAvailable: true, RadioAvailable: true})

	if err := d.SetWifiEnabled(true); err != nil {
		t.Fatalf("SetWifiEnabled failed: %v", err)
	}
	if s, _ := d.WifiState(); s != device.WifiEnabling {
		t.Fatalf("expected enabling, got %s", s)
	}

	waitEvent(t, d, "network")
	if s, _ := d.WifiState(); s != device.WifiEnabled {
		t.Fatalf("expected enabled after settle, got %s", s)
	}
}

func TestRadioImmediateSettle(t *testing.T) {
	d := newDevice(t, Options{WifiAvailable: true, RadioAvailable: true})

	mgr, err := d.RadioManager()
	if err != nil {
		t.Fatalf("RadioManager failed: %v", err)
	}
	if err := mgr.SetRadioEnabled(true); err != nil {
		t.Fatalf("SetRadioEnabled failed: %v", err)
	}
	if s, _ := mgr.RadioState(); s != device.RadioOn {
		t.Fatalf("expected on, got %s", s)
	}
	waitEvent(t, d, "radio")
}

func TestUnavailableServices(t *testing.T) {
	d := newDevice(t, Options{TickleFails: true})

	if _, err := d.WifiState(); !errors.Is(err, device.ErrServiceUnavailable) {
		t.Errorf("expected unavailable wifi, got %v", err)
	}
	if _, err := d.RadioManager(); !errors.Is(err, device.ErrServiceUnavailable) {
		t.Errorf("expected unavailable radio, got %v", err)
	}
	if err := d.SetListenForNetworkTickles(true); !errors.Is(err, device.ErrServiceUnavailable) {
		t.Errorf("expected tickle failure, got %v", err)
	}
}

func TestTickleListener(t *testing.T) {
	d := newDevice(t, Options{})
	if d.ListeningForTickles() {
		t.Fatal("expected listener off initially")
	}
	if err := d.SetListenForNetworkTickles(true); err != nil {
		t.Fatalf("SetListenForNetworkTickles failed: %v", err)
	}
	if !d.ListeningForTickles() {
		t.Error("expected listener on after set")
	}
}

func TestBackgroundDataPersists(t *testing.T) {
	d := newDevice(t, Options{})

	on, err := d.BackgroundDataSetting()
	if err != nil || on {
		t.Fatalf("expected off by default, got %v, %v", on, err)
	}
	if err := d.SetBackgroundDataSetting(true); err != nil {
		t.Fatalf("SetBackgroundDataSetting failed: %v", err)
	}
	if on, _ := d.BackgroundDataSetting(); !on {
		t.Errorf("expected on after set")
	}
}

func TestBrightnessOverrideRange(t *testing.T) {
	d := newDevice(t, Options{})
	if d.BrightnessOverride() != -1 {
		t.Fatalf("expected no override initially")
	}
	if err := d.SetScreenBrightnessOverride(300); err == nil {
		t.Error("expected out of range error")
	}
	if err := d.SetScreenBrightnessOverride(102); err != nil {
		t.Fatalf("SetScreenBrightnessOverride failed: %v", err)
	}
	if d.BrightnessOverride() != 102 {
		t.Errorf("expected override 102, got %d", d.BrightnessOverride())
	}
}

func TestCloseStopsTransitions(t *testing.T) {
	d := newDevice(t, Options{Transition: 50 * time.Millisecond, WifiAvailable: true})
	_ = d.SetWifiEnabled(true)
	d.Close()
	d.Close()

	if _, ok := <-d.Events(); ok {
		t.Error("expected closed event channel")
	}
	time.Sleep(80 * time.Millisecond)
	if s, _ := d.WifiState(); s != device.WifiEnabling {
		t.Errorf("expected transition abandoned, got %s", s)
	}
}
