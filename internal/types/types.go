package types

import (
	"encoding/json"
	"fmt"
)

// ButtonID identifies one of the five panel controls. The ordinal doubles as
// the subsystem identity and the slot index in a PanelState.
type ButtonID int

const (
	ButtonNetwork ButtonID = iota
	ButtonBrightness
	ButtonSync
	ButtonLocation
	ButtonRadio
)

// NumButtons is the fixed number of controls on the panel.
const NumButtons = 5

// Buttons lists every control in slot order.
var Buttons = [NumButtons]ButtonID{
	ButtonNetwork,
	ButtonBrightness,
	ButtonSync,
	ButtonLocation,
	ButtonRadio,
}

func (b ButtonID) Valid() bool {
	return b >= ButtonNetwork && b <= ButtonRadio
}

func (b ButtonID) String() string {
	switch b {
	case ButtonNetwork:
		return "network"
	case ButtonBrightness:
		return "brightness"
	case ButtonSync:
		return "sync"
	case ButtonLocation:
		return "location"
	case ButtonRadio:
		return "radio"
	default:
		return fmt.Sprintf("Unknown ButtonID(%d)", int(b))
	}
}

// Label is the human readable control name.
func (b ButtonID) Label() string {
	switch b {
	case ButtonNetwork:
		return "Wi-Fi"
	case ButtonBrightness:
		return "Brightness"
	case ButtonSync:
		return "Background Sync"
	case ButtonLocation:
		return "Location"
	case ButtonRadio:
		return "Short-Range Radio"
	default:
		return b.String()
	}
}

// Kind reports whether the subsystem behind b is tri-state or binary.
func (b ButtonID) Kind() StateKind {
	if b == ButtonNetwork || b == ButtonRadio {
		return KindTri
	}
	return KindBinary
}

// DisplayState is the normalized state of a subsystem with a transitional phase.
type DisplayState int

const (
	Disabled DisplayState = iota
	Enabled
	Intermediate
)

func (d DisplayState) String() string {
	switch d {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Intermediate:
		return "intermediate"
	default:
		return fmt.Sprintf("Unknown DisplayState(%d)", int(d))
	}
}

// Terminal reports whether d is a stable state a toggle may act on.
func (d DisplayState) Terminal() bool {
	return d == Disabled || d == Enabled
}

// BinaryState is the state of a subsystem with no observable transition.
type BinaryState bool

func (b BinaryState) String() string {
	if b {
		return "on"
	}
	return "off"
}

// StateKind tags which half of a State is meaningful.
type StateKind int

const (
	KindTri StateKind = iota
	KindBinary
)

func (k StateKind) String() string {
	if k == KindBinary {
		return "binary"
	}
	return "tri"
}

// State holds either a DisplayState or a BinaryState.
type State struct {
	Kind    StateKind
	Display DisplayState
	Binary  BinaryState
}

func Tri(d DisplayState) State {
	return State{Kind: KindTri, Display: d}
}

func Binary(on bool) State {
	return State{Kind: KindBinary, Binary: BinaryState(on)}
}

// Default is the off/disabled state for a subsystem of the given kind.
func Default(kind StateKind) State {
	if kind == KindBinary {
		return Binary(false)
	}
	return Tri(Disabled)
}

func (s State) String() string {
	if s.Kind == KindBinary {
		return s.Binary.String()
	}
	return s.Display.String()
}

// Slot is one subsystem's entry in a PanelState.
type Slot struct {
	ID    ButtonID
	State State
}

// PanelState is an immutable snapshot of all five subsystems in slot order.
type PanelState struct {
	slots [NumButtons]Slot
}

// NewPanelState builds a snapshot. States are indexed by ButtonID.
func NewPanelState(states [NumButtons]State) PanelState {
	var p PanelState
	for i, id := range Buttons {
		p.slots[i] = Slot{ID: id, State: states[i]}
	}
	return p
}

// Slots returns a copy of the slots in fixed order.
func (p PanelState) Slots() []Slot {
	out := make([]Slot, NumButtons)
	copy(out, p.slots[:])
	return out
}

// Slot returns the entry for id.
func (p PanelState) Slot(id ButtonID) (Slot, bool) {
	if !id.Valid() {
		return Slot{}, false
	}
	return p.slots[id], true
}

func (p PanelState) String() string {
	s := ""
	for i, slot := range p.slots {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%s", slot.ID, slot.State)
	}
	return s
}

type slotJSON struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	State string `json:"state"`
}

type panelJSON struct {
	Slots []slotJSON `json:"slots"`
}

func (p PanelState) MarshalJSON() ([]byte, error) {
	out := panelJSON{Slots: make([]slotJSON, 0, NumButtons)}
	for _, slot := range p.slots {
		out.Slots = append(out.Slots, slotJSON{
			ID:    slot.ID.String(),
			Kind:  slot.State.Kind.String(),
			State: slot.State.String(),
		})
	}
	return json.Marshal(out)
}

// Marker classifies an inbound event.
type Marker string

const (
	MarkerUserAction Marker = "user-action"
	MarkerAmbient    Marker = "ambient"
)

// Event is an inbound notification: either a button press or an ambient
// state change reported by some subsystem.
type Event struct {
	Marker  Marker
	Payload string
}

func UserAction(id ButtonID) Event {
	return Event{Marker: MarkerUserAction, Payload: fmt.Sprintf("%d", int(id))}
}

func Ambient(source string) Event {
	return Event{Marker: MarkerAmbient, Payload: source}
}

// DecisionKind is the outcome of routing an event.
type DecisionKind int

const (
	RefreshOnly DecisionKind = iota
	Toggle
)

func (k DecisionKind) String() string {
	if k == Toggle {
		return "toggle"
	}
	return "refresh"
}

// RouteDecision says whether a cycle toggles a subsystem before refreshing.
type RouteDecision struct {
	Kind   DecisionKind
	Button ButtonID
}

func (d RouteDecision) String() string {
	if d.Kind == Toggle {
		return fmt.Sprintf("toggle(%s)", d.Button)
	}
	return d.Kind.String()
}
