package modbusrtu

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	modbusrturuntime "weldgateway/pkg/protocol/modbusrtu/runtime"
	"weldgateway/pkg/runtime"
	"weldgateway/pkg/utils/binutil"

	"k8s.io/klog/v2"
)

var _ runtime.RegisterReader = (*SerialClient)(nil)

type openFunc func(address string, mode *serial.Mode) (serial.Port, error)

// SerialClient is a Modbus RTU master on one serial line. The port is opened
// lazily and reopened after an I/O failure, at most once per ReconnectPeriod.
type SerialClient struct {
	Address         string
	Mode            *serial.Mode
	Timeout         time.Duration
	ReconnectPeriod time.Duration

	open     openFunc
	now      func() time.Time
	mux      sync.Mutex
	port     serial.Port
	nextOpen time.Time
	closed   bool
}

func NewSerialClient(address string, mode *serial.Mode, timeout, reconnectPeriod time.Duration) *SerialClient {
	return &SerialClient{
		Address:         address,
		Mode:            mode,
		Timeout:         timeout,
		ReconnectPeriod: reconnectPeriod,
		open:            serial.Open,
		now:             time.Now,
	}
}

func (sc *SerialClient) ReadHoldingRegisters(ctx context.Context, slave uint8, address, quantity uint16) ([]uint16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quantity == 0 || quantity > modbusrturuntime.MaxReadRegisters {
		return nil, errors.Errorf("invalid register quantity %d", quantity)
	}

	sc.mux.Lock()
	defer sc.mux.Unlock()

	port, err := sc.connect()
	if err != nil {
		return nil, err
	}

	df := NewReadFrame(slave, modbusrturuntime.FunctionReadHoldingRegisters, address, quantity)
	least, err := sc.askAtLeast(port, df.DataFrame, df.ResponseDataFrame)
	if err != nil {
		sc.drop()
		return nil, err
	}
	data, err := df.ValidateMessage(least)
	if err != nil {
		// a garbled frame leaves the line in an unknown state
		sc.drop()
		return nil, err
	}
	return binutil.Words(data), nil
}

// Close releases the port. Reads after Close fail with ErrSerialPortClosed.
func (sc *SerialClient) Close() error {
	sc.mux.Lock()
	defer sc.mux.Unlock()
	sc.closed = true
	if sc.port == nil {
		return nil
	}
	err := sc.port.Close()
	sc.port = nil
	return err
}

func (sc *SerialClient) connect() (serial.Port, error) {
	if sc.closed {
		return nil, modbusrturuntime.ErrSerialPortClosed
	}
	if sc.port != nil {
		return sc.port, nil
	}
	if sc.now().Before(sc.nextOpen) {
		return nil, modbusrturuntime.ErrReconnectThrottled
	}
	port, err := sc.open(sc.Address, sc.Mode)
	if err != nil {
		sc.nextOpen = sc.now().Add(sc.ReconnectPeriod)
		klog.V(2).InfoS("Failed to connect serial port", "address", sc.Address, "err", err)
		return nil, errors.Wrapf(modbusrturuntime.ErrBadConn, "open %s: %v", sc.Address, err)
	}
	klog.V(2).InfoS("Succeed to connect serial port", "address", sc.Address)
	sc.port = port
	return port, nil
}

func (sc *SerialClient) drop() {
	if sc.port != nil {
		_ = sc.port.Close()
		sc.port = nil
	}
	sc.nextOpen = sc.now().Add(sc.ReconnectPeriod)
}

func (sc *SerialClient) askAtLeast(port serial.Port, request []byte, response []byte) (int, error) {
	if err := port.ResetInputBuffer(); err != nil {
		klog.V(2).InfoS("Failed to reset serial input buffer", "error", err)
		return 0, errors.Wrap(modbusrturuntime.ErrBadConn, err.Error())
	}
	rql, err := port.Write(request)
	if err != nil {
		klog.V(2).InfoS("Failed to write byte to series port", "error", err)
		return 0, errors.Wrap(modbusrturuntime.ErrBadConn, err.Error())
	}
	klog.V(5).InfoS("Succeed to write byte to series port", "bytes", request, "length", rql)

	if err = port.SetReadTimeout(sc.Timeout); err != nil {
		klog.V(2).InfoS("Failed to set serial read timeout", "error", err)
		return 0, errors.Wrap(modbusrturuntime.ErrBadConn, err.Error())
	}

	deadline := sc.now().Add(sc.Timeout)
	responseBytesLength := len(response)
	bytesLength := 0
	for bytesLength < responseBytesLength {
		n, err := port.Read(response[bytesLength:])
		if err != nil {
			klog.V(2).InfoS("Failed to read byte from series port", "error", err)
			return 0, errors.Wrap(modbusrturuntime.ErrBadConn, err.Error())
		}
		if n == 0 {
			// read timeout
			break
		}
		bytesLength += n
		// exception response: slave, fc|0x80, code, crc(2)
		if bytesLength >= 5 && response[1]&0x80 > 0 {
			return 5, nil
		}
		if sc.now().After(deadline) {
			break
		}
	}
	if responseBytesLength != bytesLength {
		klog.V(2).InfoS("Modbus rtu data length no enough", "bytesLength", bytesLength, "want", responseBytesLength)
		return 0, modbusrturuntime.ErrModbusRtuDataLengthNotEnough
	}
	klog.V(5).InfoS("Succeed to read byte from series port", "bytes", response)
	return bytesLength, nil
}
