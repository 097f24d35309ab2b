// Package sim provides an in-process device that implements every subsystem
// service. Radio power changes pass through a transitional state before they
// settle, and each settle is reported on Events like an out-of-band broadcast.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/store"
)

const eventBufferSize = 16

// Options controls timing and fault injection.
type Options struct {
	Transition     time.Duration
	WifiAvailable  bool
	RadioAvailable bool
	TickleFails    bool
}

type Device struct {
	settings device.SettingsStore
	opts     Options
	log      *log.Logger

	mu       sync.Mutex
	wifi     device.WifiState
	radio    device.RadioState
	tickles  bool
	override int
	timers   map[string]*time.Timer
	events   chan string
	closed   bool
}

func New(settings device.SettingsStore, opts Options, logger *log.Logger) *Device {
	return &Device{
		settings: settings,
		opts:     opts,
		log:      logger,
		wifi:     device.WifiDisabled,
		radio:    device.RadioOff,
		override: -1,
		timers:   make(map[string]*time.Timer),
		events:   make(chan string, eventBufferSize),
	}
}

// Events delivers the name of each subsystem whose state settled on its own.
func (d *Device) Events() <-chan string {
	return d.events
}

// Close stops pending transitions and closes Events.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	for name, t := range d.timers {
		t.Stop()
		delete(d.timers, name)
	}
	d.closed = true
	close(d.events)
}

func (d *Device) WifiState() (device.WifiState, error) {
	if !d.opts.WifiAvailable {
		return device.WifiUnknown, fmt.Errorf("wifi: %w", device.ErrServiceUnavailable)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wifi, nil
}

func (d *Device) SetWifiEnabled(enabled bool) error {
	if !d.opts.WifiAvailable {
		return fmt.Errorf("wifi: %w", device.ErrServiceUnavailable)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	final := device.WifiDisabled
	d.wifi = device.WifiDisabling
	if enabled {
		final = device.WifiEnabled
		d.wifi = device.WifiEnabling
	}
	d.schedule("network", func() { d.wifi = final })
	return nil
}

// RadioManager is the device's RadioProvider.
func (d *Device) RadioManager() (device.RadioManager, error) {
	if !d.opts.RadioAvailable {
		return nil, fmt.Errorf("radio manager: %w", device.ErrServiceUnavailable)
	}
	return d, nil
}

func (d *Device) RadioState() (device.RadioState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.radio, nil
}

func (d *Device) SetRadioEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	final := device.RadioOff
	d.radio = device.RadioTurningOff
	if enabled {
		final = device.RadioOn
		d.radio = device.RadioTurningOn
	}
	d.schedule("radio", func() { d.radio = final })
	return nil
}

func (d *Device) SetScreenBrightnessOverride(value int) error {
	if value < 0 || value > 255 {
		return fmt.Errorf("brightness %d out of range", value)
	}
	d.mu.Lock()
	d.override = value
	d.mu.Unlock()
	return nil
}

// BrightnessOverride returns the last override, or -1 if none was applied.
func (d *Device) BrightnessOverride() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.override
}

func (d *Device) BackgroundDataSetting() (bool, error) {
	v, err := d.settings.Int(device.KeyBackgroundData)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *Device) SetBackgroundDataSetting(allowed bool) error {
	v := 0
	if allowed {
		v = 1
	}
	return d.settings.PutInt(device.KeyBackgroundData, v)
}

func (d *Device) SetListenForNetworkTickles(listen bool) error {
	if d.opts.TickleFails {
		return fmt.Errorf("content: %w", device.ErrServiceUnavailable)
	}
	d.mu.Lock()
	d.tickles = listen
	d.mu.Unlock()
	return nil
}

// ListeningForTickles reports the last value given to the tickle listener.
func (d *Device) ListeningForTickles() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tickles
}

// schedule runs settle after the transition delay and reports name.
// Callers hold d.mu.
func (d *Device) schedule(name string, settle func()) {
	if t, ok := d.timers[name]; ok {
		t.Stop()
	}
	if d.closed {
		return
	}

	if d.opts.Transition <= 0 {
		settle()
		d.notify(name)
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d.opts.Transition, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || d.timers[name] != t {
			return
		}
		delete(d.timers, name)
		settle()
		d.log.Debug("Simulated %s settled", name)
		d.notify(name)
	})
	d.timers[name] = t
}

// notify never blocks; a dropped notification only delays a refresh.
// Callers hold d.mu.
func (d *Device) notify(name string) {
	if d.closed {
		return
	}
	select {
	case d.events <- name:
	default:
		d.log.Warn("Device event queue full, dropping %s", name)
	}
}
