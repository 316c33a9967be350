package device

import "testing"

func TestTopicsDefaults(t *testing.T) {
	topics := Topics{}

	if got := topics.Telemetry(); got != "sensors/thermal_stream" {
		t.Errorf("Telemetry() = %q, want sensors/thermal_stream", got)
	}
	if got := topics.Status(); got != "sensors/thermal_stream/status" {
		t.Errorf("Status() = %q, want sensors/thermal_stream/status", got)
	}
	if got := topics.Error(); got != "sensors/thermal_stream/error" {
		t.Errorf("Error() = %q, want sensors/thermal_stream/error", got)
	}
}

func TestTopicsCustomBase(t *testing.T) {
	topics := Topics{Base: "containment/thermal/cam-1"}

	if got := topics.Status(); got != "containment/thermal/cam-1/status" {
		t.Errorf("Status() = %q, want containment base applied", got)
	}
}

func TestResponseTopicsCoverAllReplyChannels(t *testing.T) {
	got := ResponseTopics(Topics{})

	want := map[string]bool{
		"sensors/thermal_stream":        true,
		"sensors/thermal_stream/status": true,
		"sensors/thermal_stream/error":  true,
		TopicConfigResponse:             true,
		TopicNetworkResponse:            true,
		TopicWifiScanResponse:           true,
		TopicWifiConnectResponse:        true,
		TopicWifiDisconnectResponse:     true,
		TopicWifiDeleteResponse:         true,
		TopicWifiStatusResponse:         true,
	}
	if len(got) != len(want) {
		t.Fatalf("ResponseTopics() returned %d topics, want %d", len(got), len(want))
	}
	for _, topic := range got {
		if !want[topic] {
			t.Errorf("ResponseTopics() contains unexpected topic %q", topic)
		}
	}
}
