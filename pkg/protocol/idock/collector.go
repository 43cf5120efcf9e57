package idock

import (
	"context"
	"errors"
	"sync"
	"time"

	idockruntime "weldgateway/pkg/protocol/idock/runtime"
	"weldgateway/pkg/runtime"

	"go.uber.org/atomic"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
)

const defaultPublishTimeout = 5 * time.Second

var (
	_ runtime.Collector     = (*IDockCollector)(nil)
	_ runtime.StateReporter = (*IDockCollector)(nil)
)

// Stats are the counters a collector exposes to the status API.
type Stats struct {
	Cycles    int64     `json:"cycles"`
	Failures  int64     `json:"failures"`
	Sent      int64     `json:"sent"`
	LastError string    `json:"lastError,omitempty"`
	LastCycle time.Time `json:"lastCycle,omitempty"`
}

// IDockCollector polls one board, classifies each block and sends the
// resulting events. Cycles of one collector never overlap.
type IDockCollector struct {
	Device  *idockruntime.IDockDevice
	Reader  runtime.RegisterReader
	Sender  runtime.Sender
	Session *DeviceSession

	PublishTimeout time.Duration
	now            func() time.Time

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	stopped   atomic.Bool

	cycles    atomic.Int64
	failures  atomic.Int64
	sent      atomic.Int64
	lastError atomic.String
	lastCycle atomic.Int64
}

func NewCollector(device *idockruntime.IDockDevice, reader runtime.RegisterReader, sender runtime.Sender) *IDockCollector {
	return &IDockCollector{
		Device:         device,
		Reader:         reader,
		Sender:         sender,
		Session:        NewDeviceSession(),
		PublishTimeout: defaultPublishTimeout,
		now:            time.Now,
		done:           make(chan struct{}),
	}
}

// Collect runs a cycle immediately and then one every TelemetryPeriod,
// measured from the end of the previous cycle.
func (c *IDockCollector) Collect(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.Device.SetCollectStatus(runtime.CollectStatusToString[runtime.Collecting])
	go func() {
		defer close(c.done)
		wait.JitterUntilWithContext(ctx, c.update, c.Device.TelemetryPeriod, 0, true)
	}()
	klog.V(2).InfoS("Succeed to start collecting", "device", c.Device.GetName(), "period", c.Device.TelemetryPeriod)
}

// Destroy stops scheduling, waits for an in-flight cycle and releases the
// transport and the sender.
func (c *IDockCollector) Destroy(ctx context.Context) {
	c.closeOnce.Do(func() {
		c.stopped.Store(true)
		if c.cancel != nil {
			c.cancel()
			select {
			case <-c.done:
			case <-ctx.Done():
				klog.V(2).InfoS("Failed to wait for collect cycle", "device", c.Device.GetName(), "err", ctx.Err())
			}
		}
		if err := c.Reader.Close(); err != nil {
			klog.V(2).InfoS("Failed to close transport", "device", c.Device.GetName(), "err", err)
		}
		if c.Sender != nil {
			if err := c.Sender.Close(ctx); err != nil {
				klog.V(2).InfoS("Failed to close sender", "device", c.Device.GetName(), "err", err)
			}
		}
		c.Device.SetCollectStatus(runtime.CollectStatusToString[runtime.Stopped])
		klog.V(2).InfoS("Stopped to collect", "device", c.Device.GetName())
	})
}

func (c *IDockCollector) update(ctx context.Context) {
	if err := c.Poll(ctx); err != nil {
		c.failures.Inc()
		c.lastError.Store(err.Error())
		c.Device.SetCollectStatus(runtime.CollectStatusToString[runtime.CollectingError])
		klog.V(2).InfoS("Failed to collect", "device", c.Device.GetName(), "err", err)
		return
	}
	c.lastError.Store("")
	c.Device.SetCollectStatus(runtime.CollectStatusToString[runtime.Collecting])
}

// Poll runs one read, decode, classify and send cycle. A read or decode
// failure sends nothing and leaves the session untouched. Send failures do
// not stop the remaining events and the session still advances.
func (c *IDockCollector) Poll(ctx context.Context) error {
	if c.stopped.Load() {
		return idockruntime.ErrCollectorStopped
	}
	at := c.now()
	if c.Device.Location != nil {
		at = at.In(c.Device.Location)
	}
	c.cycles.Inc()
	c.lastCycle.Store(at.UnixNano())

	block, err := c.Reader.ReadHoldingRegisters(ctx, c.Device.Slave, idockruntime.StartAddress, idockruntime.WordCount)
	if err != nil {
		return &idockruntime.TransportError{Device: c.Device.GetName(), Err: err}
	}
	klog.V(5).InfoS("Read register block", "device", c.Device.GetName(), "words", block)

	telemetry, err := Decode(block)
	if err != nil {
		return err
	}

	result := Classify(telemetry, c.Session.Prior(), at)

	var errs []error
	for _, event := range result.Events {
		if err := c.send(event); err != nil {
			klog.V(1).InfoS("Failed to send message", "device", c.Device.GetName(), "type", event.Type, "err", err)
			errs = append(errs, err)
		}
	}

	c.Session.Commit(result.State, telemetry.Address)
	return utilerrors.NewAggregate(errs)
}

func (c *IDockCollector) send(event Event) error {
	payload, err := event.Payload()
	if err != nil {
		return &idockruntime.SendError{Device: c.Device.GetName(), Type: string(event.Type), Err: err}
	}
	if c.Sender == nil {
		return &idockruntime.SendError{Device: c.Device.GetName(), Type: string(event.Type), Err: errors.New("no sender configured")}
	}
	// publishing is bounded by its own timeout so shutdown does not cut a
	// cycle in half
	ctx, cancel := context.WithTimeout(context.Background(), c.PublishTimeout)
	defer cancel()
	if err := c.Sender.Send(ctx, payload); err != nil {
		return &idockruntime.SendError{Device: c.Device.GetName(), Type: string(event.Type), Err: err}
	}
	c.sent.Inc()
	klog.V(4).InfoS("Succeed to send message", "device", c.Device.GetName(), "type", event.Type, "payload", string(payload))
	return nil
}

func (c *IDockCollector) Stats() Stats {
	var lastCycle time.Time
	if ns := c.lastCycle.Load(); ns != 0 {
		lastCycle = time.Unix(0, ns)
		if c.Device.Location != nil {
			lastCycle = lastCycle.In(c.Device.Location)
		}
	}
	return Stats{
		Cycles:    c.cycles.Load(),
		Failures:  c.failures.Load(),
		Sent:      c.sent.Load(),
		LastError: c.lastError.Load(),
		LastCycle: lastCycle,
	}
}

// CollectorState is what the status API shows for a device.
type CollectorState struct {
	SessionSnapshot
	Stats
}

func (c *IDockCollector) State() interface{} {
	return &CollectorState{SessionSnapshot: c.Session.Snapshot(), Stats: c.Stats()}
}
