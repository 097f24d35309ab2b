package panel

import (
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/subsystem"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

// Adapters holds one adapter per button, indexed by ButtonID.
type Adapters [types.NumButtons]subsystem.Adapter

// Dispatcher toggles exactly one subsystem per call.
type Dispatcher struct {
	adapters Adapters
	log      *log.Logger
}

func NewDispatcher(adapters Adapters, logger *log.Logger) *Dispatcher {
	return &Dispatcher{adapters: adapters, log: logger}
}

func (d *Dispatcher) Dispatch(id types.ButtonID) {
	if !id.Valid() {
		d.log.Warn("Dispatch for unknown button %d", int(id))
		return
	}
	a := d.adapters[id]
	if a == nil {
		d.log.Warn("No adapter for %s", id)
		return
	}
	d.log.Debug("Toggling %s", id)
	a.Toggle()
}
