package idock

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	idockruntime "weldgateway/pkg/protocol/idock/runtime"
	"weldgateway/pkg/runtime"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

type fakeReader struct {
	mu     sync.Mutex
	block  []uint16
	err    error
	calls  int
	closed bool
}

func (r *fakeReader) ReadHoldingRegisters(_ context.Context, slave uint8, address, quantity uint16) ([]uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if slave != 1 || address != idockruntime.StartAddress || quantity != idockruntime.WordCount {
		return nil, errors.New("unexpected request")
	}
	return r.block, nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeSender struct {
	mu       sync.Mutex
	payloads []string
	failures map[int]error
	attempts int
	closed   bool
}

func (s *fakeSender) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.attempts
	s.attempts++
	if err, ok := s.failures[n]; ok {
		return err
	}
	s.payloads = append(s.payloads, string(payload))
	return nil
}

func (s *fakeSender) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) types(t *testing.T) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.payloads))
	for _, p := range s.payloads {
		var m map[string]string
		require.NoError(t, json.Unmarshal([]byte(p), &m))
		types = append(types, m["Type"])
	}
	return types
}

func weldingBlock() []uint16 {
	telemetry := &idockruntime.Telemetry{
		Floats:  [idockruntime.FloatCount]float32{0.6, 0, 0, 0, 0, 0, 0, 0, 12.0, 12.1, 12.2, 12.3},
		Address: 7,
	}
	telemetry.Digital[5] = 2
	return Encode(telemetry)
}

func newTestCollector(reader *fakeReader, sender *fakeSender) *IDockCollector {
	device := &idockruntime.IDockDevice{
		DeviceMeta:      runtime.DeviceMeta{ObjectMeta: runtime.ObjectMeta{Name: "dock-1"}},
		Slave:           1,
		TelemetryPeriod: 10 * time.Millisecond,
		Location:        shanghai,
	}
	c := NewCollector(device, reader, sender)
	c.now = func() time.Time { return time.Date(2024, 3, 9, 6, 5, 6, 0, time.UTC) }
	return c
}

func TestPollEndToEnd(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()}
	sender := &fakeSender{}
	c := newTestCollector(reader, sender)

	require.NoError(t, c.Poll(context.Background()))
	require.Len(t, sender.payloads, 3)
	assert.Equal(t,
		`{"U0":"12.000","U1":"12.100","U2":"12.200","U3":"12.300",`+
			`"I0":"30.000","I1":"0.000","I2":"0.000","I3":"0.000",`+
			`"Status":"1","WeldStatus":"1","ID":"7","Length":"0","Speed":"0",`+
			`"Time":"2024-03-09T14:05:06.000000+08:00","Type":"Measurement"}`,
		sender.payloads[0])
	assert.Equal(t, `{"Status":"1","ID":"7","Time":"2024-03-09T14:05:06.000000+08:00","Type":"StatusChanged"}`, sender.payloads[1])
	assert.Equal(t, `{"WeldStatus":"1","ID":"7","Time":"2024-03-09T14:05:06.000000+08:00","Type":"WMStatusChanged"}`, sender.payloads[2])

	// unchanged block on the next cycle only measures
	require.NoError(t, c.Poll(context.Background()))
	assert.Equal(t, []string{"Measurement", "StatusChanged", "WMStatusChanged", "Measurement"}, sender.types(t))

	snapshot := c.Session.Snapshot()
	assert.Equal(t, idockruntime.AutoRunning, snapshot.Status)
	assert.True(t, snapshot.Welding)
	assert.Equal(t, uint16(7), snapshot.Address)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Cycles)
	assert.Equal(t, int64(4), stats.Sent)
}

func TestPollTransportError(t *testing.T) {
	reader := &fakeReader{err: errors.New("timeout")}
	sender := &fakeSender{}
	c := newTestCollector(reader, sender)

	err := c.Poll(context.Background())
	var transportErr *idockruntime.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "dock-1", transportErr.Device)
	assert.Empty(t, sender.payloads)
	assert.False(t, c.Session.Snapshot().Observed)
}

func TestPollDecodeError(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()[:20]}
	sender := &fakeSender{}
	c := newTestCollector(reader, sender)

	err := c.Poll(context.Background())
	var decodeErr *idockruntime.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, idockruntime.ReasonShortRead, decodeErr.Reason)
	assert.Empty(t, sender.payloads)
	assert.Equal(t, idockruntime.State{Status: idockruntime.PowerOff}, c.Session.Prior())
}

func TestPollSendFailureContinues(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()}
	sender := &fakeSender{failures: map[int]error{0: errors.New("broker down")}}
	c := newTestCollector(reader, sender)

	err := c.Poll(context.Background())
	require.Error(t, err)
	agg, ok := err.(utilerrors.Aggregate)
	require.True(t, ok)
	require.Len(t, agg.Errors(), 1)
	var sendErr *idockruntime.SendError
	require.True(t, errors.As(agg.Errors()[0], &sendErr))
	assert.Equal(t, "Measurement", sendErr.Type)

	assert.Equal(t, []string{"StatusChanged", "WMStatusChanged"}, sender.types(t))
	assert.Equal(t, idockruntime.State{Status: idockruntime.AutoRunning, Welding: true}, c.Session.Prior())
}

func TestPollWithoutSender(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()}
	c := newTestCollector(reader, nil)
	c.Sender = nil

	err := c.Poll(context.Background())
	require.Error(t, err)
	assert.True(t, c.Session.Snapshot().Observed)
}

func TestUpdateTracksCollectStatus(t *testing.T) {
	reader := &fakeReader{err: errors.New("no reply")}
	c := newTestCollector(reader, &fakeSender{})

	c.update(context.Background())
	assert.Equal(t, "collectingError", c.Device.GetCollectStatus())
	assert.Equal(t, int64(1), c.Stats().Failures)
	assert.NotEmpty(t, c.Stats().LastError)

	reader.mu.Lock()
	reader.err = nil
	reader.block = weldingBlock()
	reader.mu.Unlock()

	c.update(context.Background())
	assert.Equal(t, "collecting", c.Device.GetCollectStatus())
	assert.Empty(t, c.Stats().LastError)
}

func TestCollectAndDestroy(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()}
	sender := &fakeSender{}
	c := newTestCollector(reader, sender)

	c.Collect(context.Background())
	assert.Eventually(t, func() bool { return reader.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c.Destroy(ctx)
	c.Destroy(ctx)

	calls := reader.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, reader.Calls())
	assert.True(t, reader.closed)
	assert.True(t, sender.closed)
	assert.Equal(t, "stopped", c.Device.GetCollectStatus())
}

func TestPollAfterDestroy(t *testing.T) {
	reader := &fakeReader{block: weldingBlock()}
	sender := &fakeSender{}
	c := newTestCollector(reader, sender)

	c.Destroy(context.Background())

	err := c.Poll(context.Background())
	assert.ErrorIs(t, err, idockruntime.ErrCollectorStopped)
	assert.Equal(t, 0, reader.Calls())
	assert.Empty(t, sender.payloads)
}
