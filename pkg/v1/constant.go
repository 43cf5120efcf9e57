package v1

import (
	"sort"
	"time"
)

const (
	DeviceTypeIDock = "iDock"

	DefaultBaudRate = 9600
	DefaultDataBits = 8
	DefaultParity   = "noParity"
	DefaultStopBits = "1"
	DefaultSlave    = 1
	DefaultFraming  = "rtu"
	DefaultTimeout  = 5 * time.Second
)

// DeviceTypeMap holds the device types the gateway can collect.
var DeviceTypeMap = map[string]struct{}{
	DeviceTypeIDock: {},
}

func DeviceTypes() []string {
	types := make([]string, 0, len(DeviceTypeMap))
	for t := range DeviceTypeMap {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
