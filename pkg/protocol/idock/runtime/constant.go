package runtime

import (
	"errors"
	"fmt"
)

const (
	DeviceType = "iDock"

	// FloatCount analog inputs, each spread over two words
	FloatCount = 12
	// DigitalCount digital io channels, two per word (0 off, 1 flash, 2 on)
	DigitalCount = 8
	// ShortCount trailing uint16 words (board address)
	ShortCount = 1

	FloatWords   = FloatCount * 2
	DigitalWords = (DigitalCount + 1) / 2
	// WordCount is the register block length read every cycle
	WordCount = FloatWords + DigitalWords + ShortCount

	AddressWordIndex = FloatWords + DigitalWords

	ChannelCount = 4
	// VoltageOffset is the first analog input carrying a weld voltage
	VoltageOffset = 8
	// CurrentScale converts the current shunt voltage into amperes
	CurrentScale = 50
	// WeldingThreshold amperes; a channel at or above it is welding
	WeldingThreshold = 30

	StartAddress uint16 = 0
)

const (
	ReasonShortRead        = "short read"
	ReasonUnexpectedLength = "unexpected length"
)

var ErrDeviceType = errors.New("error device type")
var ErrCollectorStopped = errors.New("collector stopped")

// TransportError is a failed or timed out register read.
type TransportError struct {
	Device string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("device %s: read register block: %v", e.Device, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is a register block that does not have the expected layout.
type DecodeError struct {
	Reason string
	Got    int
	Want   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode register block: %s: got %d words, want %d", e.Reason, e.Got, e.Want)
}

// SendError is a message the ingestion endpoint did not accept.
type SendError struct {
	Device string
	Type   string
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("device %s: send %s message: %v", e.Device, e.Type, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
