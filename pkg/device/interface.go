package device

import (
	"weldgateway/pkg/runtime"
	v1 "weldgateway/pkg/v1"
)

// DeviceManager turns a configured device into a runtime device and builds
// its collector.
type DeviceManager interface {
	CreateDevice(deviceType v1.DeviceType) (runtime.Device, error)
	NewCollector(device runtime.Device) (runtime.Collector, error)
}
