package idock

import (
	"sync"

	idockruntime "weldgateway/pkg/protocol/idock/runtime"
)

// DeviceSession is the state one device carries from cycle to cycle. Machine
// status and welding flag are remembered independently.
type DeviceSession struct {
	mu       sync.RWMutex
	state    idockruntime.State
	address  uint16
	observed bool
}

// SessionSnapshot is a copy of a DeviceSession.
type SessionSnapshot struct {
	Status   idockruntime.MachineStatus `json:"status"`
	Welding  bool                       `json:"welding"`
	Address  uint16                     `json:"address"`
	Observed bool                       `json:"observed"`
}

func NewDeviceSession() *DeviceSession {
	return &DeviceSession{state: idockruntime.State{Status: idockruntime.PowerOff}}
}

func (s *DeviceSession) Prior() idockruntime.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Commit stores the outcome of a completed cycle.
func (s *DeviceSession) Commit(state idockruntime.State, address uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.address = address
	s.observed = true
}

func (s *DeviceSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		Status:   s.state.Status,
		Welding:  s.state.Welding,
		Address:  s.address,
		Observed: s.observed,
	}
}
