package runtime

import (
	"errors"
	"go.bug.st/serial"
	"weldgateway/pkg/runtime"
)

var ErrBadConn = errors.New("rtu bad connection")
var ErrServerBadResp = errors.New("rtu server bad response")
var ErrSerialPortClosed = errors.New("serial port closed")
var ErrModbusRtuDataLengthNotEnough = errors.New("modbus rtu message data length not enough")
var ErrCRC16Error = errors.New("rtu message crc16 error")
var ErrMessageFunctionCodeError = errors.New("rtu message function code error")
var ErrReconnectThrottled = errors.New("serial port reconnect throttled")

const (
	FunctionReadHoldingRegisters uint8 = 3
	// MaxReadRegisters is the FC03 limit of one request
	MaxReadRegisters = 125
)

var StopBitsToStopBits = map[runtime.StopBits]serial.StopBits{
	runtime.OneStopBit:           serial.OneStopBit,
	runtime.OnePointFiveStopBits: serial.OnePointFiveStopBits,
	runtime.TwoStopBits:          serial.TwoStopBits,
}

var ParityToParity = map[runtime.Parity]serial.Parity{
	runtime.NoParity:    serial.NoParity,
	runtime.OddParity:   serial.OddParity,
	runtime.EvenParity:  serial.EvenParity,
	runtime.MarkParity:  serial.MarkParity,
	runtime.SpaceParity: serial.SpaceParity,
}
