package device

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"weldgateway/pkg/apis/response"
	"weldgateway/pkg/runtime"
	v1 "weldgateway/pkg/v1"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
)

type Option func(*Manager)

func WithDeviceManager(deviceType string, dm DeviceManager) Option {
	return func(m *Manager) {
		m.deviceManager[deviceType] = dm
	}
}

func WithCloser(label string, closer func(context.Context) error) Option {
	return func(m *Manager) {
		m.closers = append(m.closers, runtime.LabeledCloser{Label: label, Closer: closer})
	}
}

// Manager owns every registered device and its collector. Devices are keyed
// by name.
type Manager struct {
	mu            sync.Mutex
	deviceManager map[string]DeviceManager
	devices       map[string]runtime.Device
	collectors    map[string]runtime.Collector
	closers       []runtime.LabeledCloser
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		deviceManager: make(map[string]DeviceManager),
		devices:       make(map[string]runtime.Device),
		collectors:    make(map[string]runtime.Collector),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init registers the configured devices and starts collecting. A device that
// fails to register is skipped; the others still start.
func (m *Manager) Init(ctx context.Context, objects []v1.DeviceType) error {
	var errs []error
	for _, object := range objects {
		if _, err := m.CreateDevice(ctx, object); err != nil {
			klog.ErrorS(err, "Failed to register device", "device", object.GetName())
			errs = append(errs, err)
		}
	}
	klog.V(2).InfoS("Registered devices", "count", len(m.devices))
	return utilerrors.NewAggregate(errs)
}

// CreateDevice registers one device and starts its collector. Entries that
// leave the device type empty get it from their defaults.
func (m *Manager) CreateDevice(ctx context.Context, object v1.DeviceType) (runtime.Device, error) {
	if d, ok := object.(v1.Defaulter); ok {
		d.Default()
	}
	dm, ok := m.deviceManager[object.GetDeviceType()]
	if !ok {
		return nil, errors.Errorf("unsupported device type %q", object.GetDeviceType())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exist := m.devices[object.GetName()]; exist {
		return nil, response.ErrResourceExists(object.GetName())
	}

	device, err := dm.CreateDevice(object)
	if err != nil {
		klog.V(2).InfoS("Failed to create device", "device", object.GetName(), "err", err)
		return nil, err
	}
	collector, err := dm.NewCollector(device)
	if err != nil {
		klog.V(2).InfoS("Failed to create collector", "device", device.GetName(), "err", err)
		return nil, err
	}

	m.devices[device.GetName()] = device
	m.collectors[device.GetName()] = collector
	collector.Collect(ctx)
	return device, nil
}

func (m *Manager) ListDevices(filter *runtime.DeviceFilter, exploded bool) ([]*DeviceView, error) {
	predicates := runtime.ParseDeviceFilter(filter)

	m.mu.Lock()
	ds := make([]runtime.Device, 0, len(m.devices))
	for _, d := range m.devices {
		if runtime.Match(d, predicates) {
			ds = append(ds, d)
		}
	}
	m.mu.Unlock()

	byName := func(d1, d2 runtime.Device) bool { return d1.GetName() < d2.GetName() }
	runtime.ByDevice(byName).Sort(ds)

	views := make([]*DeviceView, 0, len(ds))
	for _, d := range ds {
		views = append(views, m.view(d, exploded))
	}
	return views, nil
}

func (m *Manager) GetDeviceByName(name string, exploded bool) (*DeviceView, error) {
	m.mu.Lock()
	d, exist := m.devices[name]
	m.mu.Unlock()
	if !exist {
		return nil, os.ErrNotExist
	}
	return m.view(d, exploded), nil
}

func (m *Manager) view(d runtime.Device, exploded bool) *DeviceView {
	v := &DeviceView{
		ObjectMeta: runtime.ObjectMeta{
			Name:    d.GetName(),
			ID:      d.GetID(),
			ModTime: d.GetModTime(),
		},
		DeviceType:    d.GetDeviceType(),
		CollectStatus: d.GetCollectStatus(),
	}
	if !exploded {
		return v
	}
	if describer, ok := d.(runtime.Describer); ok {
		v.Spec = describer.Describe()
	}
	m.mu.Lock()
	collector := m.collectors[d.GetName()]
	m.mu.Unlock()
	if reporter, ok := collector.(runtime.StateReporter); ok {
		v.State = reporter.State()
	}
	return v
}

// Shutdown stops every collector and then runs the registered closers in
// reverse order.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	collectors := make([]runtime.Collector, 0, len(m.collectors))
	names := make([]string, 0, len(m.collectors))
	for name := range m.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		collectors = append(collectors, m.collectors[name])
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range collectors {
		wg.Add(1)
		go func(c runtime.Collector) {
			defer wg.Done()
			c.Destroy(ctx)
		}(c)
	}
	wg.Wait()

	var errs []error
	for i := len(m.closers); i > 0; i-- {
		lc := m.closers[i-1]
		if err := lc.Closer(ctx); err != nil {
			klog.V(2).InfoS("Failed to stop dependent service", "service", lc.Label, "err", err)
			errs = append(errs, errors.Wrap(err, lc.Label))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices)
}
