package subsystem

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const locationName = "location"

// DefaultLocationProvider is the provider toggled when none is configured.
const DefaultLocationProvider = "gps"

// Location toggles a single location provider.
type Location struct {
	store    device.SettingsStore
	provider string
	log      *log.Logger
}

func NewLocation(store device.SettingsStore, provider string, logger *log.Logger) *Location {
	if provider == "" {
		provider = DefaultLocationProvider
	}
	return &Location{store: store, provider: provider, log: logger}
}

func (l *Location) Read() types.State {
	on, err := l.enabled()
	if err != nil {
		l.log.SubsystemError(locationName, err, "read failed, reporting off")
		return types.Default(types.KindBinary)
	}
	return types.Binary(on)
}

func (l *Location) Toggle() {
	on, err := l.enabled()
	if err != nil {
		l.log.SubsystemError(locationName, err, "toggle skipped")
		return
	}
	if err := l.store.SetLocationProviderEnabled(l.provider, !on); err != nil {
		l.log.SubsystemError(locationName, err, "toggle failed")
		return
	}
	l.log.Subsystem(locationName, "provider %s enabled=%t", l.provider, !on)
}

func (l *Location) enabled() (bool, error) {
	if l.store == nil {
		return false, fmt.Errorf("settings: %w", device.ErrServiceUnavailable)
	}
	return l.store.LocationProviderEnabled(l.provider)
}
