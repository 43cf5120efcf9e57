package idock

import (
	"time"

	"go.bug.st/serial"
	idockruntime "weldgateway/pkg/protocol/idock/runtime"
	"weldgateway/pkg/protocol/modbus"
	"weldgateway/pkg/protocol/modbusrtu"
	modbusrturuntime "weldgateway/pkg/protocol/modbusrtu/runtime"
	"weldgateway/pkg/runtime"
	"weldgateway/pkg/sender"
	"weldgateway/pkg/utils/uuidutil"
	v1 "weldgateway/pkg/v1"

	"k8s.io/klog/v2"
)

// Defaults are the gateway wide values a device falls back to.
type Defaults struct {
	TelemetryPeriod time.Duration
	ReconnectPeriod time.Duration
	PublishTimeout  time.Duration
	Location        *time.Location
}

type IDockDeviceManager struct {
	Defaults Defaults
	// NewSender and NewReader build the collaborators of each collector.
	NewSender func(device, connectionString string, publishTimeout, reconnectPeriod time.Duration) (runtime.Sender, error)
	NewReader func(device *idockruntime.IDockDevice) runtime.RegisterReader
}

func NewDeviceManager(defaults Defaults) *IDockDeviceManager {
	return &IDockDeviceManager{Defaults: defaults, NewSender: sender.New, NewReader: NewReader}
}

func (m *IDockDeviceManager) CreateDevice(deviceType v1.DeviceType) (runtime.Device, error) {
	spec, ok := deviceType.(*v1.IDockDevice)
	if !ok {
		return nil, idockruntime.ErrDeviceType
	}
	spec.Default()

	d := &idockruntime.IDockDevice{
		DeviceMeta: runtime.DeviceMeta{
			ObjectMeta: runtime.ObjectMeta{
				Name:    spec.Name,
				ID:      uuidutil.UUID(),
				ModTime: time.Now(),
			},
			DeviceType:    idockruntime.DeviceType,
			CollectStatus: runtime.CollectStatusToString[runtime.Stopped],
		},
		Port:             spec.Port,
		BaudRate:         spec.BaudRate,
		DataBits:         spec.DataBits,
		Parity:           runtime.StringToParity[spec.Parity],
		StopBits:         runtime.StringToStopBits[spec.StopBits],
		Slave:            spec.Slave,
		Framing:          runtime.StringToFraming[spec.Framing],
		Timeout:          spec.Timeout.Duration,
		TelemetryPeriod:  m.Defaults.TelemetryPeriod,
		ReconnectPeriod:  m.Defaults.ReconnectPeriod,
		ConnectionString: spec.ConnectionString,
		Location:         m.Defaults.Location,
	}
	if spec.TelemetryPeriod != nil {
		d.TelemetryPeriod = spec.TelemetryPeriod.Duration
	}
	if spec.ReconnectPeriod != nil {
		d.ReconnectPeriod = spec.ReconnectPeriod.Duration
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	return d, nil
}

// NewReader picks the transport for the device framing.
func NewReader(device *idockruntime.IDockDevice) runtime.RegisterReader {
	switch device.Framing {
	case runtime.TCP:
		return modbus.NewTcpClient(device.Port, device.Timeout, device.ReconnectPeriod)
	default:
		mode := &serial.Mode{
			BaudRate: device.BaudRate,
			DataBits: device.DataBits,
			Parity:   modbusrturuntime.ParityToParity[device.Parity],
			StopBits: modbusrturuntime.StopBitsToStopBits[device.StopBits],
		}
		return modbusrtu.NewSerialClient(device.Port, mode, device.Timeout, device.ReconnectPeriod)
	}
}

// NewCollector wires a transport and a sender to the device. A sender that
// cannot be built is logged and the device is still polled, so reads and
// status keep working while the endpoint is misconfigured.
func (m *IDockDeviceManager) NewCollector(d runtime.Device) (runtime.Collector, error) {
	device, ok := d.(*idockruntime.IDockDevice)
	if !ok {
		klog.V(2).InfoS("Failed to new idock collector,device type not supported")
		return nil, idockruntime.ErrDeviceType
	}

	s, err := m.NewSender(device.GetName(), device.ConnectionString, m.publishTimeout(), device.ReconnectPeriod)
	if err != nil {
		klog.ErrorS(err, "Failed to create sender", "device", device.GetName())
		s = nil
	}

	c := NewCollector(device, m.NewReader(device), s)
	c.PublishTimeout = m.publishTimeout()
	return c, nil
}

func (m *IDockDeviceManager) publishTimeout() time.Duration {
	if m.Defaults.PublishTimeout > 0 {
		return m.Defaults.PublishTimeout
	}
	return defaultPublishTimeout
}
