package panel

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/subsystem"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

// Aggregator reads every subsystem into a fresh PanelState.
type Aggregator struct {
	adapters Adapters
	log      *log.Logger
}

func NewAggregator(adapters Adapters, logger *log.Logger) *Aggregator {
	return &Aggregator{adapters: adapters, log: logger}
}

// Aggregate always returns all five slots. A slot whose adapter is missing
// or panics holds that subsystem's default.
func (a *Aggregator) Aggregate() types.PanelState {
	var states [types.NumButtons]types.State
	for _, id := range types.Buttons {
		states[id] = a.read(id, a.adapters[id])
	}
	return types.NewPanelState(states)
}

func (a *Aggregator) read(id types.ButtonID, adapter subsystem.Adapter) (state types.State) {
	state = types.Default(id.Kind())
	if adapter == nil {
		return state
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.SubsystemError(id.String(), fmt.Errorf("%v", r), "read panicked, using default")
			state = types.Default(id.Kind())
		}
	}()

	s := adapter.Read()
	if s.Kind != id.Kind() {
		a.log.Warn("%s reported a %s state, using default", id, s.Kind)
		return state
	}
	return s
}
