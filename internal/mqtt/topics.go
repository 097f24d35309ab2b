package mqtt

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/types"
	"github.com/daemonp/powerwidget2mqtt/internal/util"
)

type Topics struct {
	prefix string
}

func NewTopics(prefix string) *Topics {
	return &Topics{prefix: prefix}
}

func (t *Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix)
}

// State carries the full panel snapshot as JSON.
func (t *Topics) State() string {
	return fmt.Sprintf("%s/state", t.prefix)
}

// Slot carries one subsystem's state string.
func (t *Topics) Slot(id types.ButtonID) string {
	return fmt.Sprintf("%s/%s", t.prefix, util.Slugify(id.Label()))
}

// Action receives button presses as a decimal button ordinal.
func (t *Topics) Action() string {
	return fmt.Sprintf("%s/action", t.prefix)
}

// Ambient receives out of band state change notifications.
func (t *Topics) Ambient() string {
	return fmt.Sprintf("%s/ambient", t.prefix)
}
