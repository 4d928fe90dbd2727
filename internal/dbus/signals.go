package dbus

import (
	"fmt"

	"github.com/jmylchreest/popstack/internal/pop"
)

// EmitChanged emits the Changed signal for a view.
func (s *Server) EmitChanged(view string, depth uint32) error {
	if s.conn == nil {
		return ErrNotRunning
	}

	if err := s.conn.Emit(Path, Interface+".Changed", view, depth); err != nil {
		return fmt.Errorf("failed to emit Changed signal: %w", err)
	}

	s.logger.Debug("emitted Changed signal", "view", view, "depth", depth)
	return nil
}

// forwardChanges emits a Changed signal for every engine change until stop
// is closed or the subscription ends.
func (s *Server) forwardChanges(ch <-chan pop.ChangeEvent, stop <-chan struct{}) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := s.EmitChanged(ev.View, uint32(ev.Depth)); err != nil {
				s.logger.Warn("failed to emit Changed signal", "view", ev.View, "error", err)
			}
		case <-stop:
			return
		}
	}
}
