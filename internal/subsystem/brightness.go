package subsystem

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const brightnessName = "brightness"

// Backlight levels. Minimum stays above the dim level so the display remains
// usable.
const (
	brightnessDim     = 20
	BrightnessOn      = 255
	BrightnessMinimum = brightnessDim + 10
	BrightnessDefault = int(BrightnessOn * 0.4)
	BrightnessMaximum = BrightnessOn

	// BrightnessThreshold is the value above which the screen counts as bright.
	BrightnessThreshold = 100
)

// BrightnessLevels is the three point toggle cycle and the bright threshold.
type BrightnessLevels struct {
	Minimum   int
	Default   int
	Maximum   int
	Threshold int
}

func DefaultBrightnessLevels() BrightnessLevels {
	return BrightnessLevels{
		Minimum:   BrightnessMinimum,
		Default:   BrightnessDefault,
		Maximum:   BrightnessMaximum,
		Threshold: BrightnessThreshold,
	}
}

// Next returns the cycle point after current: minimum -> default -> maximum
// -> minimum. Anything below default goes to default.
func (l BrightnessLevels) Next(current int) int {
	switch {
	case current < l.Default:
		return l.Default
	case current < l.Maximum:
		return l.Maximum
	default:
		return l.Minimum
	}
}

// Brightness cycles the screen backlight through BrightnessLevels.
//
// A failed read reports "not bright". A failed toggle does nothing at all.
// The two policies differ on purpose and are kept that way.
type Brightness struct {
	store  device.SettingsStore
	power  device.PowerService
	levels BrightnessLevels
	log    *log.Logger
}

func NewBrightness(store device.SettingsStore, power device.PowerService, levels BrightnessLevels, logger *log.Logger) *Brightness {
	return &Brightness{store: store, power: power, levels: levels, log: logger}
}

func (b *Brightness) Read() types.State {
	v, err := b.current()
	if err != nil {
		b.log.SubsystemError(brightnessName, err, "read failed, reporting off")
		return types.Default(types.KindBinary)
	}
	return types.Binary(v > b.levels.Threshold)
}

func (b *Brightness) Toggle() {
	if b.power == nil {
		b.log.SubsystemError(brightnessName, fmt.Errorf("power: %w", device.ErrServiceUnavailable), "toggle skipped")
		return
	}
	current, err := b.current()
	if err != nil {
		b.log.SubsystemError(brightnessName, err, "toggle skipped")
		return
	}

	next := b.levels.Next(current)
	if err := b.power.SetScreenBrightnessOverride(next); err != nil {
		b.log.SubsystemError(brightnessName, err, "override failed")
		return
	}
	if err := b.store.PutInt(device.KeyScreenBrightness, next); err != nil {
		b.log.SubsystemError(brightnessName, err, "persist failed")
		return
	}

	if stored, err := b.current(); err == nil {
		b.log.Debug("%s: %d -> %d (stored %d)", brightnessName, current, next, stored)
	}
	b.log.Subsystem(brightnessName, "set to %d", next)
}

func (b *Brightness) current() (int, error) {
	if b.store == nil {
		return 0, fmt.Errorf("settings: %w", device.ErrServiceUnavailable)
	}
	return b.store.Int(device.KeyScreenBrightness)
}
