package runtime

import (
	"strconv"
	"time"

	"weldgateway/pkg/runtime"
)

var (
	_ runtime.Device    = (*IDockDevice)(nil)
	_ runtime.Describer = (*IDockDevice)(nil)
)

type MachineStatus uint8

const (
	PowerOff MachineStatus = iota
	AutoRunning
	AutoIdle
	MenuRunning
	MenuIdle
	Stopped
)

var MachineStatusToString = map[MachineStatus]string{
	PowerOff:    "powerOff",
	AutoRunning: "autoRunning",
	AutoIdle:    "autoIdle",
	MenuRunning: "menuRunning",
	MenuIdle:    "menuIdle",
	Stopped:     "stopped",
}

func (s MachineStatus) String() string {
	if v, ok := MachineStatusToString[s]; ok {
		return v
	}
	return strconv.Itoa(int(s))
}

// Code is the decimal wire form used in outbound messages.
func (s MachineStatus) Code() string {
	return strconv.Itoa(int(s))
}

// Telemetry is one decoded register block.
type Telemetry struct {
	Floats  [FloatCount]float32
	Digital [DigitalCount]uint8
	Address uint16
}

// WeldChannels holds the per-torch values derived from Telemetry.
type WeldChannels struct {
	Voltage [ChannelCount]float64
	Current [ChannelCount]float64
}

// State is what a session remembers between cycles.
type State struct {
	Status  MachineStatus
	Welding bool
}

// IDockDevice is one registered welding controller. Only CollectStatus
// changes after registration.
type IDockDevice struct {
	runtime.DeviceMeta
	Port             string
	BaudRate         int
	DataBits         int
	Parity           runtime.Parity
	StopBits         runtime.StopBits
	Slave            uint8
	Framing          runtime.Framing
	Timeout          time.Duration
	TelemetryPeriod  time.Duration
	ReconnectPeriod  time.Duration
	ConnectionString string
	Location         *time.Location
}

func (s MachineStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Connection is the read-only view of an IDockDevice.
type Connection struct {
	Port            string `json:"port"`
	Framing         string `json:"framing"`
	BaudRate        int    `json:"baudRate,omitempty"`
	DataBits        int    `json:"dataBits,omitempty"`
	Parity          string `json:"parity,omitempty"`
	StopBits        string `json:"stopBits,omitempty"`
	Slave           uint8  `json:"slave"`
	Timeout         string `json:"timeout"`
	TelemetryPeriod string `json:"telemetryPeriod"`
	ReconnectPeriod string `json:"reconnectPeriod"`
}

func (d *IDockDevice) Describe() interface{} {
	c := &Connection{
		Port:            d.Port,
		Framing:         runtime.FramingToString[d.Framing],
		Slave:           d.Slave,
		Timeout:         d.Timeout.String(),
		TelemetryPeriod: d.TelemetryPeriod.String(),
		ReconnectPeriod: d.ReconnectPeriod.String(),
	}
	if d.Framing == runtime.RTU {
		c.BaudRate = d.BaudRate
		c.DataBits = d.DataBits
		c.Parity = runtime.ParityToString[d.Parity]
		c.StopBits = runtime.StopBitsToString[d.StopBits]
	}
	return c
}
