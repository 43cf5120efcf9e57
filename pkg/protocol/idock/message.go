package idock

import (
	"encoding/json"
	"strconv"
	"time"

	idockruntime "weldgateway/pkg/protocol/idock/runtime"
)

// TimeLayout is ISO-8601 with microseconds and a numeric offset.
const TimeLayout = "2006-01-02T15:04:05.000000-07:00"

type EventType string

const (
	Measurement       EventType = "Measurement"
	StatusChanged     EventType = "StatusChanged"
	WeldStatusChanged EventType = "WMStatusChanged"
)

// Event is one outbound record. Which fields reach the wire depends on Type.
type Event struct {
	Type    EventType
	Status  idockruntime.MachineStatus
	Welding bool
	Address uint16
	Weld    idockruntime.WeldChannels
	Time    time.Time
}

// Field order is part of the downstream contract.
type measurementMessage struct {
	U0         string `json:"U0"`
	U1         string `json:"U1"`
	U2         string `json:"U2"`
	U3         string `json:"U3"`
	I0         string `json:"I0"`
	I1         string `json:"I1"`
	I2         string `json:"I2"`
	I3         string `json:"I3"`
	Status     string `json:"Status"`
	WeldStatus string `json:"WeldStatus"`
	ID         string `json:"ID"`
	Length     string `json:"Length"`
	Speed      string `json:"Speed"`
	Time       string `json:"Time"`
	Type       string `json:"Type"`
}

type statusMessage struct {
	Status string `json:"Status"`
	ID     string `json:"ID"`
	Time   string `json:"Time"`
	Type   string `json:"Type"`
}

type weldStatusMessage struct {
	WeldStatus string `json:"WeldStatus"`
	ID         string `json:"ID"`
	Time       string `json:"Time"`
	Type       string `json:"Type"`
}

func fixed3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func weldCode(welding bool) string {
	if welding {
		return "1"
	}
	return "0"
}

// Payload renders the JSON document sent to the ingestion endpoint.
func (e Event) Payload() ([]byte, error) {
	id := strconv.FormatUint(uint64(e.Address), 10)
	ts := e.Time.Format(TimeLayout)
	switch e.Type {
	case StatusChanged:
		return json.Marshal(&statusMessage{
			Status: e.Status.Code(),
			ID:     id,
			Time:   ts,
			Type:   string(e.Type),
		})
	case WeldStatusChanged:
		return json.Marshal(&weldStatusMessage{
			WeldStatus: weldCode(e.Welding),
			ID:         id,
			Time:       ts,
			Type:       string(e.Type),
		})
	default:
		return json.Marshal(&measurementMessage{
			U0:         fixed3(e.Weld.Voltage[0]),
			U1:         fixed3(e.Weld.Voltage[1]),
			U2:         fixed3(e.Weld.Voltage[2]),
			U3:         fixed3(e.Weld.Voltage[3]),
			I0:         fixed3(e.Weld.Current[0]),
			I1:         fixed3(e.Weld.Current[1]),
			I2:         fixed3(e.Weld.Current[2]),
			I3:         fixed3(e.Weld.Current[3]),
			Status:     e.Status.Code(),
			WeldStatus: weldCode(e.Welding),
			ID:         id,
			Length:     "0",
			Speed:      "0",
			Time:       ts,
			Type:       string(Measurement),
		})
	}
}
