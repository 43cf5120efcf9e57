package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newDevice(name, status string) Device {
	return &DeviceMeta{ObjectMeta: ObjectMeta{Name: name}, CollectStatus: status}
}

func TestParseDeviceFilter(t *testing.T) {
	welder1 := newDevice("welder-1", "collecting")
	welder2 := newDevice("welder-2", "collectingError")
	cutter := newDevice("cutter", "collecting")

	tests := []struct {
		name   string
		filter DeviceFilter
		want   []Device
	}{
		{"empty", DeviceFilter{}, []Device{welder1, welder2, cutter}},
		{"plain name", DeviceFilter{Name: "cutter"}, []Device{cutter}},
		{"starts with", DeviceFilter{Name: map[string]interface{}{"startsWith": "welder"}}, []Device{welder1, welder2}},
		{"in", DeviceFilter{Name: map[string]interface{}{"in": []string{"welder-2", "cutter"}}}, []Device{welder2, cutter}},
		{"status", DeviceFilter{CollectStatus: "collecting"}, []Device{welder1, cutter}},
		{"name and status", DeviceFilter{Name: map[string]interface{}{"endsWith": "2"}, CollectStatus: "collecting"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predicates := ParseDeviceFilter(&tt.filter)
			var got []Device
			for _, d := range []Device{welder1, welder2, cutter} {
				if Match(d, predicates) {
					got = append(got, d)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByDevice(t *testing.T) {
	ds := []Device{newDevice("b", ""), newDevice("c", ""), newDevice("a", "")}
	ByDevice(func(d1, d2 Device) bool { return d1.GetName() < d2.GetName() }).Sort(ds)
	assert.Equal(t, "a", ds[0].GetName())
	assert.Equal(t, "c", ds[2].GetName())
}
