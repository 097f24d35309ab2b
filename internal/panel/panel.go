package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const eventQueueSize = 64

var (
	ErrStopped   = errors.New("panel stopped")
	ErrQueueFull = errors.New("panel event queue full")
)

// Panel drives the route, toggle, aggregate, emit cycle. Cycles never
// overlap: Handle serializes callers and Run drains the event queue one event
// at a time.
type Panel struct {
	log        *log.Logger
	router     *Router
	dispatcher *Dispatcher
	aggregator *Aggregator
	renderer   MultiRenderer

	events chan types.Event
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	last    types.PanelState
	hasLast bool
}

func NewPanel(adapters Adapters, renderer Renderer, logger *log.Logger) *Panel {
	return &Panel{
		log:        logger,
		router:     NewRouter(logger),
		dispatcher: NewDispatcher(adapters, logger),
		aggregator: NewAggregator(adapters, logger),
		renderer:   MultiRenderer{renderer},
		events:     make(chan types.Event, eventQueueSize),
		done:       make(chan struct{}),
	}
}

// AddRenderer attaches another sink. Call it before Run.
func (p *Panel) AddRenderer(r Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderer = append(p.renderer, r)
}

// Refresh runs a cycle with no preceding toggle.
func (p *Panel) Refresh() types.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.emit()
}

// Handle runs one full cycle for event and returns the emitted snapshot.
func (p *Panel) Handle(event types.Event) types.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()

	decision := p.router.Route(event)
	p.log.Debug("Event %s %q routed to %s", event.Marker, event.Payload, decision)

	if decision.Kind == types.Toggle {
		p.dispatcher.Dispatch(decision.Button)
	}
	return p.emit()
}

func (p *Panel) emit() types.PanelState {
	state := p.aggregator.Aggregate()
	p.last = state
	p.hasLast = true
	p.log.Debug("Panel state: %s", state)
	p.renderer.Render(state)
	return state
}

// Last returns the most recently emitted snapshot.
func (p *Panel) Last() (types.PanelState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasLast
}

// Submit queues an event for Run. It reports false once Run has stopped.
func (p *Panel) Submit(event types.Event) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.events <- event:
		return true
	case <-p.done:
		return false
	}
}

// TrySubmit queues an event without blocking. Callers that must not stall,
// such as broker callbacks, drop the event on ErrQueueFull and rely on the
// next cycle to reconcile.
func (p *Panel) TrySubmit(event types.Event) error {
	select {
	case <-p.done:
		return ErrStopped
	default:
	}

	select {
	case p.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Forward submits an ambient event for every subsystem name received on
// sources until the channel closes, ctx is cancelled or Run stops.
func (p *Panel) Forward(ctx context.Context, sources <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-sources:
			if !ok {
				return
			}
			if !p.Submit(types.Ambient(name)) {
				return
			}
		}
	}
}

// Run emits the initial snapshot and then handles queued events until ctx is
// cancelled.
func (p *Panel) Run(ctx context.Context) {
	defer p.once.Do(func() { close(p.done) })

	p.log.Info("Starting panel")
	p.Refresh()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Panel stopped")
			return
		case event := <-p.events:
			p.Handle(event)
		}
	}
}
