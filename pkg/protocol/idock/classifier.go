package idock

import (
	"time"

	idockruntime "weldgateway/pkg/protocol/idock/runtime"
)

// Result is the outcome of classifying one cycle.
type Result struct {
	State  idockruntime.State
	Weld   idockruntime.WeldChannels
	Events []Event
}

// DeriveWeldChannels maps analog inputs 8..11 to voltages and scales inputs
// 0..3 into currents.
func DeriveWeldChannels(t *idockruntime.Telemetry) idockruntime.WeldChannels {
	var w idockruntime.WeldChannels
	for i := 0; i < idockruntime.ChannelCount; i++ {
		w.Voltage[i] = float64(t.Floats[idockruntime.VoltageOffset+i])
		w.Current[i] = float64(t.Floats[i]) * idockruntime.CurrentScale
	}
	return w
}

// IsWelding reports whether any channel carries at least the welding threshold.
func IsWelding(w idockruntime.WeldChannels) bool {
	for _, current := range w.Current {
		if current >= idockruntime.WeldingThreshold {
			return true
		}
	}
	return false
}

// DeriveMachineStatus reads digital channels 5 (auto program), 6 (menu
// program) and 7 (stop). Rules are applied in order and a later match
// overwrites an earlier one; with no match the prior status is kept.
func DeriveMachineStatus(digital [idockruntime.DigitalCount]uint8, prior idockruntime.MachineStatus) idockruntime.MachineStatus {
	auto, menu, stop := digital[5], digital[6], digital[7]
	status := prior
	if stop != 0 {
		status = idockruntime.Stopped
	}
	if auto == 1 {
		status = idockruntime.AutoIdle
	}
	if auto == 2 {
		status = idockruntime.AutoRunning
	}
	if menu == 1 {
		status = idockruntime.MenuIdle
	}
	if menu == 2 {
		status = idockruntime.MenuRunning
	}
	if auto == 0 && menu == 0 && stop == 0 {
		status = idockruntime.PowerOff
	}
	return status
}

// Classify derives the new state from t and lists the events of this cycle:
// always a measurement, then a status change and a welding change when they
// differ from prior.
func Classify(t *idockruntime.Telemetry, prior idockruntime.State, at time.Time) Result {
	weld := DeriveWeldChannels(t)
	state := idockruntime.State{
		Status:  DeriveMachineStatus(t.Digital, prior.Status),
		Welding: IsWelding(weld),
	}

	events := make([]Event, 0, 3)
	base := Event{
		Status:  state.Status,
		Welding: state.Welding,
		Address: t.Address,
		Weld:    weld,
		Time:    at,
	}

	measurement := base
	measurement.Type = Measurement
	events = append(events, measurement)

	if state.Status != prior.Status {
		changed := base
		changed.Type = StatusChanged
		events = append(events, changed)
	}
	if state.Welding != prior.Welding {
		changed := base
		changed.Type = WeldStatusChanged
		events = append(events, changed)
	}

	return Result{State: state, Weld: weld, Events: events}
}
