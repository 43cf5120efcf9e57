package idock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	idockruntime "weldgateway/pkg/protocol/idock/runtime"
)

func digital(auto, menu, stop uint8) [idockruntime.DigitalCount]uint8 {
	return [idockruntime.DigitalCount]uint8{1, 2, 1, 2, 1, auto, menu, stop}
}

func TestDeriveMachineStatus(t *testing.T) {
	tests := []struct {
		name             string
		auto, menu, stop uint8
		prior            idockruntime.MachineStatus
		want             idockruntime.MachineStatus
	}{
		{name: "all off", prior: idockruntime.AutoRunning, want: idockruntime.PowerOff},
		{name: "auto flash", auto: 1, want: idockruntime.AutoIdle},
		{name: "auto on", auto: 2, want: idockruntime.AutoRunning},
		{name: "menu flash", menu: 1, want: idockruntime.MenuIdle},
		{name: "menu on", menu: 2, want: idockruntime.MenuRunning},
		{name: "stop flash", stop: 1, want: idockruntime.Stopped},
		{name: "stop on", stop: 2, want: idockruntime.Stopped},
		{name: "menu wins over auto", auto: 2, menu: 2, want: idockruntime.MenuRunning},
		{name: "auto wins over stop", auto: 1, stop: 1, want: idockruntime.AutoIdle},
		{name: "unknown auto value keeps prior", auto: 3, prior: idockruntime.MenuIdle, want: idockruntime.MenuIdle},
		{name: "unknown menu value keeps prior", menu: 3, prior: idockruntime.Stopped, want: idockruntime.Stopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveMachineStatus(digital(tt.auto, tt.menu, tt.stop), tt.prior))
		})
	}
}

func TestIsWelding(t *testing.T) {
	var w idockruntime.WeldChannels
	assert.False(t, IsWelding(w))

	w.Current[2] = 29.999
	assert.False(t, IsWelding(w))

	w.Current[2] = 30
	assert.True(t, IsWelding(w))

	w.Current[2] = 0
	w.Current[3] = 120
	assert.True(t, IsWelding(w))
}

func TestDeriveWeldChannels(t *testing.T) {
	telemetry := &idockruntime.Telemetry{}
	telemetry.Floats[0] = 0.6
	telemetry.Floats[3] = 0.59
	telemetry.Floats[8] = 12
	telemetry.Floats[11] = 24.5

	w := DeriveWeldChannels(telemetry)
	assert.InDelta(t, 30.0, w.Current[0], 1e-4)
	assert.InDelta(t, 29.5, w.Current[3], 1e-4)
	assert.Equal(t, 12.0, w.Voltage[0])
	assert.Equal(t, 24.5, w.Voltage[3])
	assert.True(t, IsWelding(w))
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestClassifyEmitsOnChangeOnly(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	welding := &idockruntime.Telemetry{Digital: digital(2, 0, 0), Address: 3}
	welding.Floats[1] = 1

	tests := []struct {
		name  string
		prior idockruntime.State
		want  []EventType
	}{
		{
			name:  "first cycle",
			prior: idockruntime.State{Status: idockruntime.PowerOff},
			want:  []EventType{Measurement, StatusChanged, WeldStatusChanged},
		},
		{
			name:  "steady",
			prior: idockruntime.State{Status: idockruntime.AutoRunning, Welding: true},
			want:  []EventType{Measurement},
		},
		{
			name:  "only welding changed",
			prior: idockruntime.State{Status: idockruntime.AutoRunning},
			want:  []EventType{Measurement, WeldStatusChanged},
		},
		{
			name:  "only status changed",
			prior: idockruntime.State{Status: idockruntime.MenuIdle, Welding: true},
			want:  []EventType{Measurement, StatusChanged},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(welding, tt.prior, at)
			assert.Equal(t, idockruntime.State{Status: idockruntime.AutoRunning, Welding: true}, result.State)
			assert.Equal(t, tt.want, eventTypes(result.Events))
			for _, e := range result.Events {
				assert.Equal(t, uint16(3), e.Address)
				assert.Equal(t, at, e.Time)
			}
		})
	}
}

func TestClassifyKeepsPriorStatusOnUnknownInputs(t *testing.T) {
	telemetry := &idockruntime.Telemetry{Digital: digital(3, 0, 0)}
	result := Classify(telemetry, idockruntime.State{Status: idockruntime.MenuRunning}, time.Now())
	assert.Equal(t, idockruntime.MenuRunning, result.State.Status)
	assert.Equal(t, []EventType{Measurement}, eventTypes(result.Events))
}
