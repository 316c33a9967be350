package device

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	payload := []byte(`{"device_id":"cam-1","status":"online","timestamp":"2026-08-31T10:00:00Z","interface":"usb"}`)

	got, err := ParseStatus(payload)
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if got.DeviceID != "cam-1" || got.Status != "online" || got.Interface != "usb" {
		t.Errorf("ParseStatus() = %+v, want cam-1/online/usb", got)
	}
}

func TestParseStatusRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `thermal offline`},
		{name: "missing device_id", payload: `{"status":"online"}`},
		{name: "missing status", payload: `{"device_id":"cam-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatus([]byte(tt.payload))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("ParseStatus() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestParseTelemetry(t *testing.T) {
	payload := []byte(`{
		"timestamp": "2026-08-31T10:00:00Z",
		"device_id": "cam-1",
		"device_name": "containment-cam",
		"location": "rack-4",
		"interface": "spi",
		"thermal_data": {
			"raw_array": [20.1, 20.3],
			"statistics": {"min_temp": 19.5, "max_temp": 31.2, "avg_temp": 22.8},
			"frame_count": 42
		}
	}`)

	got, err := ParseTelemetry(payload)
	if err != nil {
		t.Fatalf("ParseTelemetry() error = %v", err)
	}
	if got.DeviceID != "cam-1" {
		t.Errorf("DeviceID = %q, want cam-1", got.DeviceID)
	}
	if got.ThermalData.Statistics.MaxTemp != 31.2 {
		t.Errorf("MaxTemp = %v, want 31.2", got.ThermalData.Statistics.MaxTemp)
	}
	if got.ThermalData.FrameCount != 42 {
		t.Errorf("FrameCount = %d, want 42", got.ThermalData.FrameCount)
	}
}

func TestNewConfigRequest(t *testing.T) {
	body := NewConfigRequest("thermalview-abc123")

	var decoded map[string]string
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	if decoded["requested_by"] != "thermalview-abc123" {
		t.Errorf("requested_by = %q, want thermalview-abc123", decoded["requested_by"])
	}
	if decoded["timestamp"] == "" {
		t.Error("timestamp missing from request body")
	}
}
