package subsystem

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const radioName = "radio"

// radioHandle caches the radio manager once it has been acquired. Failed
// acquisitions are retried on the next use. Concurrent first uses share a
// single provider call.
type radioHandle struct {
	provide device.RadioProvider
	group   singleflight.Group

	mu  sync.RWMutex
	mgr device.RadioManager
}

func (h *radioHandle) get() (device.RadioManager, error) {
	h.mu.RLock()
	mgr := h.mgr
	h.mu.RUnlock()
	if mgr != nil {
		return mgr, nil
	}

	v, err, _ := h.group.Do(radioName, func() (interface{}, error) {
		h.mu.RLock()
		cached := h.mgr
		h.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		if h.provide == nil {
			return nil, fmt.Errorf("radio manager: %w", device.ErrServiceUnavailable)
		}
		m, err := h.provide()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("radio manager: %w", device.ErrServiceUnavailable)
		}

		h.mu.Lock()
		if h.mgr == nil {
			h.mgr = m
		}
		m = h.mgr
		h.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(device.RadioManager), nil
}

// Radio wraps the short-range radio manager. Without a manager the radio is
// reported as intermediate: its state is unknown and toggling is unsafe.
type Radio struct {
	handle *radioHandle
	log    *log.Logger
}

func NewRadio(provide device.RadioProvider, logger *log.Logger) *Radio {
	return &Radio{handle: &radioHandle{provide: provide}, log: logger}
}

func (r *Radio) Read() types.State {
	d, _ := r.state()
	return types.Tri(d)
}

func (r *Radio) Toggle() {
	d, mgr := r.state()
	if mgr == nil {
		r.log.Debug("%s: toggle skipped, state unknown", radioName)
		return
	}
	if !d.Terminal() {
		r.log.Debug("%s: %v", radioName, ErrNoOpToggle)
		return
	}

	enable := d == types.Disabled
	if err := mgr.SetRadioEnabled(enable); err != nil {
		r.log.SubsystemError(radioName, err, "toggle failed")
		return
	}
	r.log.Subsystem(radioName, "requested enabled=%t", enable)
}

// state returns the display state and the manager it was read from, or a nil
// manager when none could be acquired. A manager that fails to report its
// state yields Disabled, like every other unavailable service.
func (r *Radio) state() (types.DisplayState, device.RadioManager) {
	mgr, err := r.handle.get()
	if err != nil {
		r.log.SubsystemError(radioName, err, "manager unavailable, reporting intermediate")
		return types.Intermediate, nil
	}

	raw, err := mgr.RadioState()
	if err != nil {
		r.log.SubsystemError(radioName, err, "read failed, reporting disabled")
		return types.Disabled, nil
	}
	return radioDisplayState(raw), mgr
}

func radioDisplayState(raw device.RadioState) types.DisplayState {
	switch raw {
	case device.RadioOff:
		return types.Disabled
	case device.RadioOn:
		return types.Enabled
	default:
		return types.Intermediate
	}
}
