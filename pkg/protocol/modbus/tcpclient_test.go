package modbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	modbusruntime "weldgateway/pkg/protocol/modbus/runtime"
)

type fakeRegisterClient struct {
	results [][]byte
	errs    []error
	calls   int
}

func (f *fakeRegisterClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.results[i], nil
}

func TestNewTcpClientDefaultPort(t *testing.T) {
	c := NewTcpClient("192.168.1.20", time.Second, time.Minute)
	assert.Equal(t, "192.168.1.20:502", c.Address)

	c = NewTcpClient("192.168.1.20:4196", time.Second, time.Minute)
	assert.Equal(t, "192.168.1.20:4196", c.Address)
}

func TestTcpClientReadHoldingRegisters(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeRegisterClient{
		results: [][]byte{nil, nil, {0x00, 0x07, 0x12, 0x34}},
		errs:    []error{errors.New("i/o timeout")},
	}
	c := NewTcpClient("127.0.0.1:502", time.Second, 30*time.Second)
	c.client = fake
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.ReadHoldingRegisters(ctx, 1, 0, 2)
	assert.ErrorIs(t, err, modbusruntime.ErrBadConn)

	_, err = c.ReadHoldingRegisters(ctx, 1, 0, 2)
	assert.ErrorIs(t, err, modbusruntime.ErrReconnectThrottled)
	assert.Equal(t, 1, fake.calls)

	now = now.Add(31 * time.Second)
	_, err = c.ReadHoldingRegisters(ctx, 1, 0, 2)
	assert.ErrorIs(t, err, modbusruntime.ErrServerBadResp)

	words, err := c.ReadHoldingRegisters(ctx, 7, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0007, 0x1234}, words)
	assert.Equal(t, byte(7), c.handler.SlaveId)
}
