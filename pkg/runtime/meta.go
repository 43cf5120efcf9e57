package runtime

import (
	"context"
	"time"
)

type Collector interface {
	Collect(ctx context.Context)
	Destroy(ctx context.Context)
}

// RegisterReader reads one block of holding registers. Implementations bound
// the call with their own timeout.
type RegisterReader interface {
	ReadHoldingRegisters(ctx context.Context, slave uint8, address, quantity uint16) ([]uint16, error)
	Close() error
}

// Sender delivers one JSON payload to the ingestion endpoint.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
	Close(ctx context.Context) error
}

type Object interface {
	GetName() string
	SetName(string)
	GetID() string
	SetID(string)
	GetModTime() time.Time
	SetModTime(time.Time)
}

type Device interface {
	Object
	GetDeviceType() string
	SetDeviceType(string)
	GetCollectStatus() string
	SetCollectStatus(string)
}

// Describer exposes the settings of a device that never change after
// registration, so they can be marshalled while the device is collecting.
type Describer interface {
	Describe() interface{}
}

// StateReporter exposes what a collector observed last.
type StateReporter interface {
	State() interface{}
}
