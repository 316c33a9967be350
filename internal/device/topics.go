package device

// DefaultTelemetryBase is the telemetry topic the device publishes to
// when deployed next to a local broker.
const DefaultTelemetryBase = "sensors/thermal_stream"

// Configuration and management topics served by the device's config
// manager process. Requests carry no routing key; the device is a
// singleton on its broker.
const (
	TopicConfigGet      = "rpi/config/get"
	TopicConfigSet      = "rpi/config/set"
	TopicConfigResponse = "rpi/config/response"

	TopicNetworkGet      = "rpi/network/get"
	TopicNetworkSet      = "rpi/network/set"
	TopicNetworkResponse = "rpi/network/response"

	TopicWifiScan               = "rpi/wifi/scan"
	TopicWifiScanResponse       = "rpi/wifi/scan_response"
	TopicWifiConnect            = "rpi/wifi/connect"
	TopicWifiConnectResponse    = "rpi/wifi/connect_response"
	TopicWifiDisconnect         = "rpi/wifi/disconnect"
	TopicWifiDisconnectResponse = "rpi/wifi/disconnect_response"
	TopicWifiDelete             = "rpi/wifi/delete"
	TopicWifiDeleteResponse     = "rpi/wifi/delete_response"
	TopicWifiStatus             = "rpi/wifi/status"
	TopicWifiStatusGet          = "rpi/wifi/status/get"
	TopicWifiStatusResponse     = "rpi/wifi/status/response"
)

// Topics builds the telemetry-family topic names for one device feed.
// The zero value uses DefaultTelemetryBase.
//
//	topics := device.Topics{}
//	topics.Status() // "sensors/thermal_stream/status"
type Topics struct {
	// Base is the telemetry topic; status and error topics hang off it.
	Base string
}

func (t Topics) base() string {
	if t.Base == "" {
		return DefaultTelemetryBase
	}
	return t.Base
}

// Telemetry returns the topic carrying thermal frames.
func (t Topics) Telemetry() string {
	return t.base()
}

// Status returns the retained topic carrying online/offline announcements.
func (t Topics) Status() string {
	return t.base() + "/status"
}

// Error returns the topic carrying device fault reports.
func (t Topics) Error() string {
	return t.base() + "/error"
}

// ResponseTopics lists every topic the dashboard listens on for a
// device at the given telemetry base, in the order they are typically
// subscribed.
func ResponseTopics(t Topics) []string {
	return []string{
		t.Telemetry(),
		t.Status(),
		t.Error(),
		TopicConfigResponse,
		TopicNetworkResponse,
		TopicWifiScanResponse,
		TopicWifiConnectResponse,
		TopicWifiDisconnectResponse,
		TopicWifiDeleteResponse,
		TopicWifiStatusResponse,
	}
}
