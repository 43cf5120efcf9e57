package v1

type DeviceType interface {
	GetDeviceType() string
	GetName() string
}

// Defaulter is a device entry that can fill its unset fields, including the
// device type.
type Defaulter interface {
	Default()
}

type DeviceMeta struct {
	Name       string `json:"name"`
	DeviceType string `json:"deviceType,omitempty"`
}

func (d *DeviceMeta) GetDeviceType() string {
	return d.DeviceType
}

func (d *DeviceMeta) GetName() string {
	return d.Name
}
