package subsystem

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const networkName = "network"

// Network wraps the wireless networking service.
type Network struct {
	wifi device.WifiService
	log  *log.Logger
}

func NewNetwork(wifi device.WifiService, logger *log.Logger) *Network {
	return &Network{wifi: wifi, log: logger}
}

func (n *Network) Read() types.State {
	d, err := n.state()
	if err != nil {
		n.log.SubsystemError(networkName, err, "read failed, reporting disabled")
		return types.Default(types.KindTri)
	}
	return types.Tri(d)
}

func (n *Network) Toggle() {
	d, err := n.state()
	if err != nil {
		n.log.SubsystemError(networkName, err, "toggle skipped")
		return
	}
	if !d.Terminal() {
		n.log.Debug("%s: %v", networkName, ErrNoOpToggle)
		return
	}

	enable := d == types.Disabled
	if err := n.wifi.SetWifiEnabled(enable); err != nil {
		n.log.SubsystemError(networkName, err, "toggle failed")
		return
	}
	n.log.Subsystem(networkName, "requested enabled=%t", enable)
}

func (n *Network) state() (types.DisplayState, error) {
	if n.wifi == nil {
		return types.Disabled, fmt.Errorf("wifi: %w", device.ErrServiceUnavailable)
	}
	raw, err := n.wifi.WifiState()
	if err != nil {
		return types.Disabled, err
	}
	return wifiDisplayState(raw), nil
}

func wifiDisplayState(raw device.WifiState) types.DisplayState {
	switch raw {
	case device.WifiDisabled:
		return types.Disabled
	case device.WifiEnabled:
		return types.Enabled
	default:
		return types.Intermediate
	}
}
