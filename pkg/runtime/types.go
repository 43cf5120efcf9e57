package runtime

import (
	"context"
	"sync"
	"time"
)

type LabeledCloser struct {
	Label  string
	Closer func(context.Context) error
}

type ResponseModel struct {
	Devices interface{} `json:"devices,omitempty"`
}

type ObjectMeta struct {
	Name    string    `json:"name"`
	ID      string    `json:"id"`
	ModTime time.Time `json:"modTime"`
}

type DeviceMeta struct {
	ObjectMeta
	DeviceType    string `json:"deviceType"`
	CollectStatus string `json:"collectStatus"`

	mu sync.RWMutex
}

func (o *ObjectMeta) GetName() string {
	return o.Name
}

func (o *ObjectMeta) SetName(s string) {
	o.Name = s
}

func (o *ObjectMeta) GetID() string {
	return o.ID
}

func (o *ObjectMeta) SetID(s string) {
	o.ID = s
}

func (o *ObjectMeta) GetModTime() time.Time {
	return o.ModTime
}

func (o *ObjectMeta) SetModTime(t time.Time) {
	o.ModTime = t
}

func (d *DeviceMeta) GetDeviceType() string {
	return d.DeviceType
}

func (d *DeviceMeta) SetDeviceType(s string) {
	d.DeviceType = s
}

// GetCollectStatus is safe to call while the collector goroutine updates it.
func (d *DeviceMeta) GetCollectStatus() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.CollectStatus
}

func (d *DeviceMeta) SetCollectStatus(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CollectStatus = s
}
