package idock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	idockruntime "weldgateway/pkg/protocol/idock/runtime"
)

func TestDeviceSession(t *testing.T) {
	s := NewDeviceSession()
	assert.Equal(t, idockruntime.State{Status: idockruntime.PowerOff}, s.Prior())
	assert.False(t, s.Snapshot().Observed)

	s.Commit(idockruntime.State{Status: idockruntime.MenuIdle, Welding: true}, 9)
	assert.Equal(t, idockruntime.State{Status: idockruntime.MenuIdle, Welding: true}, s.Prior())
	assert.Equal(t, SessionSnapshot{Status: idockruntime.MenuIdle, Welding: true, Address: 9, Observed: true}, s.Snapshot())
}

func TestDeviceSessionConcurrentAccess(t *testing.T) {
	s := NewDeviceSession()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Commit(idockruntime.State{Status: idockruntime.AutoIdle}, uint16(i))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, idockruntime.AutoIdle, s.Prior().Status)
}
