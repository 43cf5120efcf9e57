package options

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"weldgateway/cmd/weldgateway/config"
	"weldgateway/pkg/device"
	"weldgateway/pkg/gateway"
	baseoptions "weldgateway/pkg/generic/options"
	"weldgateway/pkg/protocol/idock"
	"weldgateway/pkg/storage"
	v1 "weldgateway/pkg/v1"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/klog/v2"
)

type Options struct {
	Port            string            `json:"port"`
	Wait            metav1.Duration   `json:"graceful-timeout"`
	Timezone        string            `json:"timezone"`
	TelemetryPeriod metav1.Duration   `json:"telemetry-period"`
	ReconnectPeriod metav1.Duration   `json:"reconnect-period"`
	PublishTimeout  metav1.Duration   `json:"publish-timeout"`
	CertFile        string            `json:"cert-file,omitempty"`
	KeyFile         string            `json:"key-file,omitempty"`
	DataDir         string            `json:"data-dir"`
	Devices         []*v1.IDockDevice `json:"devices"`
	baseoptions.BaseOptions
}

const (
	_defaultPort            = "32200"
	_defaultWait            = 15 * time.Second
	_defaultTimezone        = "Asia/Shanghai"
	_defaultTelemetryPeriod = 5 * time.Second
	_defaultReconnectPeriod = 30 * time.Second
	_defaultPublishTimeout  = 5 * time.Second
	_defaultDataDir         = "./data"
	_gatewayName            = "weldgateway"
)

func NewDefaultOptions() *Options {
	return &Options{
		Port:            _defaultPort,
		Wait:            metav1.Duration{Duration: _defaultWait},
		Timezone:        _defaultTimezone,
		TelemetryPeriod: metav1.Duration{Duration: _defaultTelemetryPeriod},
		ReconnectPeriod: metav1.Duration{Duration: _defaultReconnectPeriod},
		PublishTimeout:  metav1.Duration{Duration: _defaultPublishTimeout},
		DataDir:         _defaultDataDir,
		Devices:         []*v1.IDockDevice{},
		BaseOptions:     baseoptions.NewDefaultBaseOptions(),
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Port, "port", "P", o.Port, "Port of the status API")
	fs.DurationVar(&o.Wait.Duration, "graceful-timeout", o.Wait.Duration, "The duration for which the server gracefully wait for collectors and connections to finish - e.g. 15s or 1m")
	fs.StringVar(&o.Timezone, "timezone", o.Timezone, "IANA time zone used for message timestamps")
	fs.DurationVar(&o.TelemetryPeriod.Duration, "telemetry-period", o.TelemetryPeriod.Duration, "Delay between the end of one collect cycle and the start of the next")
	fs.DurationVar(&o.ReconnectPeriod.Duration, "reconnect-period", o.ReconnectPeriod.Duration, "Minimum delay before a failed transport or sender is reopened")
	fs.DurationVar(&o.PublishTimeout.Duration, "publish-timeout", o.PublishTimeout.Duration, "Maximum time to wait for the ingestion endpoint to accept one message")
	fs.StringVar(&o.CertFile, "cert-file", o.CertFile, "TLS certificate of the status API, served over plain http when empty")
	fs.StringVar(&o.KeyFile, "key-file", o.KeyFile, "TLS private key of the status API")
	fs.StringVar(&o.DataDir, "data-dir", o.DataDir, "Directory holding the persisted gateway identity")
}

// Config registers every configured device and starts collecting.
func (o *Options) Config(ctx context.Context) (*config.Config, error) {
	location, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, err
	}

	idockMgr := idock.NewDeviceManager(idock.Defaults{
		TelemetryPeriod: o.TelemetryPeriod.Duration,
		ReconnectPeriod: o.ReconnectPeriod.Duration,
		PublishTimeout:  o.PublishTimeout.Duration,
		Location:        location,
	})
	deviceMgr := device.NewManager(
		device.WithDeviceManager(v1.DeviceTypeIDock, idockMgr),
	)

	objects := make([]v1.DeviceType, 0, len(o.Devices))
	for _, d := range o.Devices {
		objects = append(objects, d)
	}
	if err := deviceMgr.Init(ctx, objects); err != nil {
		klog.ErrorS(err, "Some devices were not registered")
	}

	gatewayMgr := gateway.NewGatewayManager(_gatewayName, gateway.WithDeviceCounter(deviceMgr.Count))
	if store, err := storage.NewFsClient(o.DataDir); err != nil {
		klog.ErrorS(err, "Failed to open data dir, gateway id will change on restart", "dir", o.DataDir)
	} else {
		gatewayMgr.Init(store)
	}

	return &config.Config{
		DeviceMgr:  deviceMgr,
		GatewayMgr: gatewayMgr,
		CertFile:   o.CertFile,
		KeyFile:    o.KeyFile,
	}, nil
}
