package modbus

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
	modbusruntime "weldgateway/pkg/protocol/modbus/runtime"
	"weldgateway/pkg/runtime"
	"weldgateway/pkg/utils/binutil"

	"k8s.io/klog/v2"
)

var _ runtime.RegisterReader = (*TcpClient)(nil)

type registerClient interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// TcpClient reads registers from a board behind a Modbus TCP serial server.
type TcpClient struct {
	Address         string
	ReconnectPeriod time.Duration

	handler  *modbus.TCPClientHandler
	client   registerClient
	now      func() time.Time
	mux      sync.Mutex
	broken   bool
	nextOpen time.Time
}

func NewTcpClient(address string, timeout, reconnectPeriod time.Duration) *TcpClient {
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, modbusruntime.DefaultPort)
	}
	h := modbus.NewTCPClientHandler(address)
	h.Timeout = timeout
	h.IdleTimeout = 2 * reconnectPeriod
	return &TcpClient{
		Address:         address,
		ReconnectPeriod: reconnectPeriod,
		handler:         h,
		client:          modbus.NewClient(h),
		now:             time.Now,
	}
}

func (c *TcpClient) ReadHoldingRegisters(ctx context.Context, slave uint8, address, quantity uint16) ([]uint16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quantity == 0 || quantity > modbusruntime.MaxReadRegisters {
		return nil, errors.Errorf("invalid register quantity %d", quantity)
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	if c.broken {
		if c.now().Before(c.nextOpen) {
			return nil, modbusruntime.ErrReconnectThrottled
		}
		c.broken = false
	}

	c.handler.SlaveId = slave
	results, err := c.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		klog.V(2).InfoS("Failed to read modbus tcp registers", "address", c.Address, "err", err)
		_ = c.handler.Close()
		c.broken = true
		c.nextOpen = c.now().Add(c.ReconnectPeriod)
		return nil, errors.Wrap(modbusruntime.ErrBadConn, err.Error())
	}
	if len(results) != int(quantity)*2 {
		return nil, errors.Wrapf(modbusruntime.ErrServerBadResp, "got %d bytes, want %d", len(results), int(quantity)*2)
	}
	klog.V(5).InfoS("Succeed to read modbus tcp registers", "address", c.Address, "bytes", results)
	return binutil.Words(results), nil
}

func (c *TcpClient) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.handler.Close()
}
