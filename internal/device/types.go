package device

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusPayload is the retained announcement the device publishes on
// its status topic, both on connect ("online") and as its last will
// ("offline").
type StatusPayload struct {
	DeviceID  string `json:"device_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Interface string `json:"interface,omitempty"`
}

// Recognised Status values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ErrorPayload is a fault report from the device.
type ErrorPayload struct {
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Interface string `json:"interface,omitempty"`
}

// TelemetryStats is the statistics block inside a thermal frame.
type TelemetryStats struct {
	MinTemp float64 `json:"min_temp"`
	MaxTemp float64 `json:"max_temp"`
	AvgTemp float64 `json:"avg_temp"`
}

// TelemetryPayload is one published thermal frame. The raw pixel array
// is left as JSON for consumers that render it; the dashboard core only
// needs the envelope.
type TelemetryPayload struct {
	Timestamp   string `json:"timestamp"`
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name"`
	Location    string `json:"location"`
	Interface   string `json:"interface"`
	ThermalData struct {
		RawArray   json.RawMessage `json:"raw_array"`
		Statistics TelemetryStats  `json:"statistics"`
		FrameCount int             `json:"frame_count"`
	} `json:"thermal_data"`
}

// CommandResponse is the envelope the device wraps every config,
// network and WiFi reply in.
type CommandResponse struct {
	Status    string          `json:"status,omitempty"`
	Timestamp string          `json:"timestamp"`
	DeviceID  string          `json:"device_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ParseStatus decodes a status-topic payload.
func ParseStatus(payload []byte) (StatusPayload, error) {
	var p StatusPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return StatusPayload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.DeviceID == "" || p.Status == "" {
		return StatusPayload{}, fmt.Errorf("%w: missing device_id or status", ErrMalformedPayload)
	}
	return p, nil
}

// ParseError decodes an error-topic payload.
func ParseError(payload []byte) (ErrorPayload, error) {
	var p ErrorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ErrorPayload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.DeviceID == "" {
		return ErrorPayload{}, fmt.Errorf("%w: missing device_id", ErrMalformedPayload)
	}
	return p, nil
}

// ParseTelemetry decodes a telemetry frame.
func ParseTelemetry(payload []byte) (TelemetryPayload, error) {
	var p TelemetryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return TelemetryPayload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return p, nil
}

// NewConfigRequest builds the (empty-bodied) payload for a config
// snapshot request on TopicConfigGet. The device keys nothing off the
// body; the timestamp aids log correlation.
func NewConfigRequest(requesterID string) []byte {
	body, _ := json.Marshal(map[string]string{
		"requested_by": requesterID,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	return body
}
