package panel

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

// ErrMalformedAction is reported when a user action payload does not name
// one of the five buttons.
var ErrMalformedAction = errors.New("malformed action")

// Router classifies inbound events.
type Router struct {
	log *log.Logger
}

func NewRouter(logger *log.Logger) *Router {
	return &Router{log: logger}
}

// Route never fails: anything that is not a well formed user action becomes
// a plain refresh.
func (r *Router) Route(event types.Event) types.RouteDecision {
	if event.Marker != types.MarkerUserAction {
		return types.RouteDecision{Kind: types.RefreshOnly}
	}

	id, err := ParseButton(event.Payload)
	if err != nil {
		r.log.Debug("Ignoring user action: %v", err)
		return types.RouteDecision{Kind: types.RefreshOnly}
	}
	return types.RouteDecision{Kind: types.Toggle, Button: id}
}

// ParseButton parses the decimal ordinal of a ButtonID.
func ParseButton(payload string) (types.ButtonID, error) {
	if payload == "" {
		return 0, fmt.Errorf("%w: empty payload", ErrMalformedAction)
	}
	n, err := strconv.Atoi(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedAction, payload)
	}
	id := types.ButtonID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("%w: no button %d", ErrMalformedAction, n)
	}
	return id, nil
}
