package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"weldgateway/pkg/storage"
	"weldgateway/pkg/utils/uuidutil"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
)

const cpuSampleWindow = 200 * time.Millisecond

type Option func(*Manager)

// WithDiskPath selects the filesystem whose usage is reported.
func WithDiskPath(path string) Option {
	return func(m *Manager) {
		m.diskPath = path
	}
}

// WithDeviceCounter lets the meta endpoint report how many devices are
// registered.
func WithDeviceCounter(count func() int) Option {
	return func(m *Manager) {
		m.deviceCount = count
	}
}

type Manager struct {
	gatewayMeta *GatewayMeta
	diskPath    string
	deviceCount func() int
}

func NewGatewayManager(name string, opts ...Option) *Manager {
	hostname, err := os.Hostname()
	if err != nil {
		klog.V(2).InfoS("Failed to read hostname", "err", err)
	}
	m := &Manager{
		gatewayMeta: &GatewayMeta{Hostname: hostname},
		diskPath:    "/",
	}
	m.gatewayMeta.Name = name
	m.gatewayMeta.ID = uuidutil.UUID()
	m.gatewayMeta.ModTime = time.Now()
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads the gateway identity from store, creating it on first start so
// the id survives restarts.
func (m *Manager) Init(store storage.Storage) {
	data, err := store.Get(storage.Gateway)
	if err != nil {
		if !os.IsNotExist(err) {
			klog.V(2).InfoS("Failed to read gateway information", "err", err)
			return
		}
		klog.V(3).InfoS("Gateway information not exist,been created automatically", "gatewayId", m.gatewayMeta.ID)
		if err := store.Create(storage.Gateway, m.gatewayMeta); err != nil {
			klog.V(2).InfoS("Failed to create gateway information", "err", err)
		}
		return
	}

	stored := &GatewayMeta{}
	if err := json.Unmarshal(data, stored); err != nil {
		klog.V(2).InfoS("Failed to unmarshal gateway information", "err", err)
		return
	}
	m.gatewayMeta.ObjectMeta = stored.ObjectMeta
}

func (m *Manager) GetGatewayMeta() *GatewayMeta {
	meta := *m.gatewayMeta
	if m.deviceCount != nil {
		meta.Devices = m.deviceCount()
	}
	return &meta
}

func (m *Manager) getGatewayCpu(ctx context.Context) (*CpuUsageInfo, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return nil, err
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	info := &CpuUsageInfo{Cores: cores}
	if len(percents) > 0 {
		info.UsedPercent = formatPercent(percents[0])
	}
	return info, nil
}

func (m *Manager) getGatewayMem(ctx context.Context) (*MemUsageInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &MemUsageInfo{
		Total:       formatBytes(vm.Total),
		Used:        formatBytes(vm.Used),
		UsedPercent: formatPercent(vm.UsedPercent),
	}, nil
}

func (m *Manager) getGatewayDisk(ctx context.Context) (*DiskUsageInfo, error) {
	usage, err := disk.UsageWithContext(ctx, m.diskPath)
	if err != nil {
		return nil, err
	}
	return &DiskUsageInfo{
		Path:        usage.Path,
		Total:       formatBytes(usage.Total),
		Used:        formatBytes(usage.Used),
		UsedPercent: formatPercent(usage.UsedPercent),
	}, nil
}

// Stats collects every host figure. Whatever could be read is returned
// alongside the aggregated errors of the rest.
func (m *Manager) Stats(ctx context.Context) (*ResponseModel, error) {
	var errs []error
	rm := &ResponseModel{Meta: m.GetGatewayMeta()}
	var err error
	if rm.Cpu, err = m.getGatewayCpu(ctx); err != nil {
		errs = append(errs, err)
	}
	if rm.Mem, err = m.getGatewayMem(ctx); err != nil {
		errs = append(errs, err)
	}
	if rm.Disk, err = m.getGatewayDisk(ctx); err != nil {
		errs = append(errs, err)
	}
	return rm, utilerrors.NewAggregate(errs)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
