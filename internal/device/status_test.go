package device

import (
	"testing"
	"time"

	"github.com/oakmere/thermalview/internal/connectivity"
)

func statusMessage(topic, payload string, at time.Time) connectivity.Message {
	return connectivity.Message{
		Topic:      topic,
		Payload:    []byte(payload),
		ReceivedAt: at,
	}
}

func TestStatusTrackerRecordsOnline(t *testing.T) {
	tracker := NewStatusTracker(Topics{}, nil)
	listen := tracker.Listener()

	now := time.Now()
	listen(statusMessage("sensors/thermal_stream/status",
		`{"device_id":"cam-1","status":"online","timestamp":"2026-08-31T10:00:00Z","interface":"spi"}`,
		now))

	got, ok := tracker.Get("cam-1")
	if !ok {
		t.Fatal("Get(cam-1) not found after status message")
	}
	if got.Status != StatusOnline {
		t.Errorf("Status = %q, want online", got.Status)
	}
	if got.Interface != "spi" {
		t.Errorf("Interface = %q, want spi", got.Interface)
	}
	if !got.LastSeen.Equal(now) {
		t.Errorf("LastSeen = %v, want message arrival time", got.LastSeen)
	}
}

func TestStatusTrackerOfflineTransition(t *testing.T) {
	tracker := NewStatusTracker(Topics{}, nil)
	listen := tracker.Listener()

	listen(statusMessage("sensors/thermal_stream/status",
		`{"device_id":"cam-1","status":"online","timestamp":"t"}`, time.Now()))
	listen(statusMessage("sensors/thermal_stream/status",
		`{"device_id":"cam-1","status":"offline","timestamp":"t"}`, time.Now()))

	got, _ := tracker.Get("cam-1")
	if got.Status != StatusOffline {
		t.Errorf("Status = %q, want offline after second announcement", got.Status)
	}
}

func TestStatusTrackerRecordsErrors(t *testing.T) {
	tracker := NewStatusTracker(Topics{}, nil)
	listen := tracker.Listener()

	listen(statusMessage("sensors/thermal_stream/error",
		`{"device_id":"cam-1","timestamp":"t","error":"capture failed"}`, time.Now()))

	got, ok := tracker.Get("cam-1")
	if !ok {
		t.Fatal("Get(cam-1) not found after error message")
	}
	if got.LastError != "capture failed" {
		t.Errorf("LastError = %q, want capture failed", got.LastError)
	}
}

func TestStatusTrackerIgnoresOtherTopics(t *testing.T) {
	tracker := NewStatusTracker(Topics{}, nil)
	listen := tracker.Listener()

	// Self-filtering: the dispatcher hands us everything on the bus.
	listen(statusMessage("rpi/config/response", `{"device_id":"cam-1"}`, time.Now()))
	listen(statusMessage("sensors/thermal_stream", `{"device_id":"cam-1"}`, time.Now()))

	if got := tracker.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty for non-status topics", got)
	}
}

func TestStatusTrackerSkipsMalformedPayloads(t *testing.T) {
	tracker := NewStatusTracker(Topics{}, nil)
	listen := tracker.Listener()

	listen(statusMessage("sensors/thermal_stream/status", `not json`, time.Now()))
	listen(statusMessage("sensors/thermal_stream/status", `{"status":"online"}`, time.Now()))

	if got := tracker.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty after malformed payloads", got)
	}
}

func TestStatusOnline(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "online and fresh",
			status: Status{Status: StatusOnline, LastSeen: now.Add(-10 * time.Second)},
			want:   true,
		},
		{
			name:   "online but stale",
			status: Status{Status: StatusOnline, LastSeen: now.Add(-10 * time.Minute)},
			want:   false,
		},
		{
			name:   "offline",
			status: Status{Status: StatusOffline, LastSeen: now},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Online(time.Minute, now); got != tt.want {
				t.Errorf("Online() = %v, want %v", got, tt.want)
			}
		})
	}
}
