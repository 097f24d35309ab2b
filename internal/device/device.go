// Package device declares the external subsystem services the panel reads and
// toggles. Implementations live elsewhere; the panel core only sees these
// interfaces.
package device

import "errors"

// ErrServiceUnavailable is returned when an underlying service cannot be
// reached or has no value for the requested setting.
var ErrServiceUnavailable = errors.New("service unavailable")

// WifiState is the raw power state reported by the wireless network service.
type WifiState int

const (
	WifiDisabling WifiState = iota
	WifiDisabled
	WifiEnabling
	WifiEnabled
	WifiUnknown
)

func (s WifiState) String() string {
	switch s {
	case WifiDisabling:
		return "disabling"
	case WifiDisabled:
		return "disabled"
	case WifiEnabling:
		return "enabling"
	case WifiEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// RadioState is the raw power state reported by the short-range radio manager.
type RadioState int

const (
	RadioOff RadioState = iota
	RadioTurningOn
	RadioOn
	RadioTurningOff
	RadioUnknown
)

func (s RadioState) String() string {
	switch s {
	case RadioOff:
		return "off"
	case RadioTurningOn:
		return "turning_on"
	case RadioOn:
		return "on"
	case RadioTurningOff:
		return "turning_off"
	default:
		return "unknown"
	}
}

// Setting keys understood by a SettingsStore.
const (
	KeyScreenBrightness = "screen_brightness"
	KeyBackgroundData   = "background_data"
)

type WifiService interface {
	WifiState() (WifiState, error)
	SetWifiEnabled(enabled bool) error
}

// SettingsStore is the persisted settings provider.
type SettingsStore interface {
	Int(key string) (int, error)
	PutInt(key string, value int) error
	LocationProviderEnabled(provider string) (bool, error)
	SetLocationProviderEnabled(provider string, enabled bool) error
}

// PowerService applies a screen brightness immediately, ahead of the
// persisted value.
type PowerService interface {
	SetScreenBrightnessOverride(value int) error
}

type ConnectivityService interface {
	BackgroundDataSetting() (bool, error)
	SetBackgroundDataSetting(allowed bool) error
}

// ContentService is told whether it should keep listening for network
// tickles after the background data flag changes.
type ContentService interface {
	SetListenForNetworkTickles(listen bool) error
}

type RadioManager interface {
	RadioState() (RadioState, error)
	SetRadioEnabled(enabled bool) error
}

// RadioProvider acquires the radio manager. It may fail, in which case the
// caller retries on a later use.
type RadioProvider func() (RadioManager, error)
