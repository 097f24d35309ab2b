// Package subsystem adapts each external device service to a uniform
// read/toggle capability used by the panel.
//
// Adapters never return errors. A failing service is logged and reported as
// the subsystem's off/disabled default so that one broken subsystem cannot
// keep the others from rendering.
package subsystem

import (
	"errors"

	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

// ErrNoOpToggle annotates a toggle that was suppressed because the subsystem
// is mid-transition. It is logged, never returned.
var ErrNoOpToggle = errors.New("toggle suppressed while intermediate")

// Adapter is the capability every subsystem exposes to the panel.
type Adapter interface {
	Read() types.State
	Toggle()
}
