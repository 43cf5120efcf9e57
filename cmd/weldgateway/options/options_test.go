package options

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	baseoptions "weldgateway/pkg/generic/options"
	v1 "weldgateway/pkg/v1"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const sampleConfig = `
port: "32300"
timezone: Asia/Shanghai
telemetry-period: 2s
devices:
- name: dock-1
  port: /dev/ttyUSB0
  baudRate: 19200
  connectionString: HostName=hub.azure-devices.net;DeviceId=dock-1;SharedAccessKey=c2VjcmV0
- name: dock-2
  port: 10.0.0.5:502
  framing: tcp
  telemetryPeriod: 1s
  connectionString: tcp://broker:1883
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "weldgateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseConfigFile(t *testing.T) {
	o := NewDefaultOptions()
	o.ConfigFile = writeConfig(t, sampleConfig)

	require.NoError(t, baseoptions.ParseAndApplyConfigFile(o, []string{"--config", o.ConfigFile, "--port", "32400"}))

	// flags win over the file
	assert.Equal(t, "32400", o.Port)
	assert.Equal(t, 2*time.Second, o.TelemetryPeriod.Duration)
	assert.Equal(t, 30*time.Second, o.ReconnectPeriod.Duration)
	require.Len(t, o.Devices, 2)
	assert.Equal(t, "dock-1", o.Devices[0].Name)
	assert.Equal(t, 19200, o.Devices[0].BaudRate)
	assert.Equal(t, "tcp", o.Devices[1].Framing)
	assert.Equal(t, time.Second, o.Devices[1].TelemetryPeriod.Duration)

	assert.Empty(t, ValidateOptions(o))
}

func TestParseConfigFileRejectsUnknownFields(t *testing.T) {
	o := NewDefaultOptions()
	o.ConfigFile = writeConfig(t, "devices:\n- name: dock-1\n  baudRte: 9600\n")
	assert.Error(t, baseoptions.ParseAndApplyConfigFile(o, []string{"--config", o.ConfigFile}))
}

func validDevice(name string) *v1.IDockDevice {
	return &v1.IDockDevice{
		DeviceMeta:       v1.DeviceMeta{Name: name},
		Port:             "/dev/ttyUSB0",
		ConnectionString: "tcp://broker:1883",
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		field  string
	}{
		{name: "bad port", mutate: func(o *Options) { o.Port = "http" }, field: "port"},
		{name: "bad timezone", mutate: func(o *Options) { o.Timezone = "Mars/Olympus" }, field: "timezone"},
		{name: "zero period", mutate: func(o *Options) { o.TelemetryPeriod.Duration = 0 }, field: "telemetry-period"},
		{name: "cert without key", mutate: func(o *Options) { o.CertFile = "cert.pem" }, field: "key-file"},
		{name: "duplicate device", mutate: func(o *Options) { o.Devices = append(o.Devices, validDevice("dock-1")) }, field: "devices[1].name"},
		{name: "empty name", mutate: func(o *Options) { o.Devices[0].Name = "" }, field: "devices[0].name"},
		{name: "slash in name", mutate: func(o *Options) { o.Devices[0].Name = "a/b" }, field: "devices[0].name"},
		{name: "empty port", mutate: func(o *Options) { o.Devices[0].Port = "" }, field: "devices[0].port"},
		{name: "unknown framing", mutate: func(o *Options) { o.Devices[0].Framing = "rtuOverUdp" }, field: "devices[0].framing"},
		{name: "unknown parity", mutate: func(o *Options) { o.Devices[0].Parity = "odd" }, field: "devices[0].parity"},
		{name: "unknown stop bits", mutate: func(o *Options) { o.Devices[0].StopBits = "3" }, field: "devices[0].stopBits"},
		{
			name:   "negative device period",
			mutate: func(o *Options) { o.Devices[0].TelemetryPeriod = &metav1.Duration{Duration: -time.Second} },
			field:  "devices[0].telemetryPeriod",
		},
		{name: "missing connection string", mutate: func(o *Options) { o.Devices[0].ConnectionString = "" }, field: "devices[0].connectionString"},
		{name: "bad connection string", mutate: func(o *Options) { o.Devices[0].ConnectionString = "HostName=hub" }, field: "devices[0].connectionString"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewDefaultOptions()
			o.Devices = []*v1.IDockDevice{validDevice("dock-1")}
			require.Empty(t, ValidateOptions(o))

			tt.mutate(o)
			errs := ValidateOptions(o)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateRedactsConnectionString(t *testing.T) {
	o := NewDefaultOptions()
	d := validDevice("dock-1")
	d.ConnectionString = "HostName=hub;SharedAccessKey=topsecret"
	o.Devices = []*v1.IDockDevice{d}

	errs := ValidateOptions(o)
	require.Len(t, errs, 1)
	assert.False(t, strings.Contains(errs[0].Error(), "topsecret"))
}

func TestConfigRegistersEntryWithoutDeviceType(t *testing.T) {
	dir := t.TempDir()
	content := fmt.Sprintf(`
data-dir: %s
devices:
- name: dock-1
  port: %s
  connectionString: tcp://127.0.0.1:1
`, filepath.Join(dir, "data"), filepath.Join(dir, "ttyUSB0"))

	o := NewDefaultOptions()
	o.ConfigFile = writeConfig(t, content)
	require.NoError(t, baseoptions.ParseAndApplyConfigFile(o, []string{"--config", o.ConfigFile}))
	require.Empty(t, ValidateOptions(o))

	c, err := o.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.DeviceMgr.Count())
	assert.Equal(t, v1.DeviceTypeIDock, o.Devices[0].DeviceType)

	view, err := c.DeviceMgr.GetDeviceByName("dock-1", false)
	require.NoError(t, err)
	assert.Equal(t, "dock-1", view.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, c.DeviceMgr.Shutdown(ctx))
}

func TestValidateDeviceType(t *testing.T) {
	o := NewDefaultOptions()
	o.Devices = []*v1.IDockDevice{{
		DeviceMeta:       v1.DeviceMeta{Name: "dock-1", DeviceType: "opcua"},
		Port:             "/dev/ttyUSB0",
		ConnectionString: "tcp://broker:1883",
	}}
	errs := ValidateOptions(o)
	require.Len(t, errs, 1)
	assert.Equal(t, "devices[0].deviceType", errs[0].Field)
}
