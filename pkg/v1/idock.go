package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// IDockDevice is one welding controller entry of the config file.
type IDockDevice struct {
	DeviceMeta
	Port     string `json:"port"`               // serial device path or host:port of a serial server
	BaudRate int    `json:"baudRate,omitempty"` // 波特率
	DataBits int    `json:"dataBits,omitempty"`
	Parity   string `json:"parity,omitempty"`   // noParity oddParity evenParity markParity spaceParity
	StopBits string `json:"stopBits,omitempty"` // 1 1.5 2
	Slave    uint8  `json:"slave,omitempty"`
	Framing  string `json:"framing,omitempty"` // rtu tcp
	// Timeout bounds one register read.
	Timeout *metav1.Duration `json:"timeout,omitempty"`
	// TelemetryPeriod and ReconnectPeriod override the gateway wide values.
	TelemetryPeriod  *metav1.Duration `json:"telemetryPeriod,omitempty"`
	ReconnectPeriod  *metav1.Duration `json:"reconnectPeriod,omitempty"`
	ConnectionString string           `json:"connectionString"`
}

// Default fills unset fields. Periods left nil are taken from the gateway.
func (d *IDockDevice) Default() {
	if len(d.DeviceType) == 0 {
		d.DeviceType = DeviceTypeIDock
	}
	if d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.DataBits == 0 {
		d.DataBits = DefaultDataBits
	}
	if len(d.Parity) == 0 {
		d.Parity = DefaultParity
	}
	if len(d.StopBits) == 0 {
		d.StopBits = DefaultStopBits
	}
	if d.Slave == 0 {
		d.Slave = DefaultSlave
	}
	if len(d.Framing) == 0 {
		d.Framing = DefaultFraming
	}
	if d.Timeout == nil {
		d.Timeout = &metav1.Duration{Duration: DefaultTimeout}
	}
}
