package subsystem

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const syncName = "sync"

// Sync controls the background data flag and keeps the tickle listener in
// step with it.
type Sync struct {
	conn    device.ConnectivityService
	content device.ContentService
	log     *log.Logger
}

func NewSync(conn device.ConnectivityService, content device.ContentService, logger *log.Logger) *Sync {
	return &Sync{conn: conn, content: content, log: logger}
}

func (s *Sync) Read() types.State {
	on, err := s.allowed()
	if err != nil {
		s.log.SubsystemError(syncName, err, "read failed, reporting off")
		return types.Default(types.KindBinary)
	}
	return types.Binary(on)
}

func (s *Sync) Toggle() {
	on, err := s.allowed()
	if err != nil {
		s.log.SubsystemError(syncName, err, "toggle skipped")
		return
	}
	if err := s.conn.SetBackgroundDataSetting(!on); err != nil {
		s.log.SubsystemError(syncName, err, "toggle failed")
		return
	}
	s.log.Subsystem(syncName, "background data allowed=%t", !on)

	// The flag flip stands even if the listener cannot be told.
	if s.content == nil {
		s.log.SubsystemError(syncName, fmt.Errorf("content: %w", device.ErrServiceUnavailable), "tickle listener not notified")
		return
	}
	if err := s.content.SetListenForNetworkTickles(!on); err != nil {
		s.log.SubsystemError(syncName, err, "tickle listener not notified")
	}
}

func (s *Sync) allowed() (bool, error) {
	if s.conn == nil {
		return false, fmt.Errorf("connectivity: %w", device.ErrServiceUnavailable)
	}
	return s.conn.BackgroundDataSetting()
}
