package device

import (
	"weldgateway/pkg/runtime"
)

// DeviceView is one device as served by the status API. Spec and State are
// only filled in when the caller asks for the exploded form.
type DeviceView struct {
	runtime.ObjectMeta
	DeviceType    string      `json:"deviceType"`
	CollectStatus string      `json:"collectStatus"`
	Spec          interface{} `json:"spec,omitempty"`
	State         interface{} `json:"state,omitempty"`
}
