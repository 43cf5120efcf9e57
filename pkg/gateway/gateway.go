package gateway

import "weldgateway/pkg/runtime"

// GatewayMeta identifies this gateway process.
type GatewayMeta struct {
	runtime.ObjectMeta
	Hostname string `json:"hostname"`
	Devices  int    `json:"devices"`
}

type CpuUsageInfo struct {
	Cores       int    `json:"cores"`
	UsedPercent string `json:"usedPercent"`
}

type MemUsageInfo struct {
	Total       string `json:"total"`
	Used        string `json:"used"`
	UsedPercent string `json:"usedPercent"`
}

type DiskUsageInfo struct {
	Path        string `json:"path"`
	Total       string `json:"total"`
	Used        string `json:"used"`
	UsedPercent string `json:"usedPercent"`
}

type ResponseModel struct {
	Meta *GatewayMeta   `json:"meta,omitempty"`
	Cpu  *CpuUsageInfo  `json:"cpu,omitempty"`
	Mem  *MemUsageInfo  `json:"mem,omitempty"`
	Disk *DiskUsageInfo `json:"disk,omitempty"`
}
