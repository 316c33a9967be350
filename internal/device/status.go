package device

import (
	"sync"
	"time"

	"github.com/oakmere/thermalview/internal/connectivity"
)

// Status is the tracked condition of one device.
type Status struct {
	DeviceID  string
	Status    string
	Interface string
	LastSeen  time.Time
	LastError string
}

// Online reports whether the device announced itself online and has
// been heard from within maxAge.
func (s Status) Online(maxAge time.Duration, now time.Time) bool {
	return s.Status == StatusOnline && now.Sub(s.LastSeen) <= maxAge
}

// Logger is the logging interface the tracker needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// StatusTracker maintains the last known status and error per device,
// fed by the shared connectivity listener channel. It filters for its
// own topics and ignores everything else, so it can share the feed with
// any number of other consumers.
//
// Thread Safety: all methods are safe for concurrent use.
type StatusTracker struct {
	topics Topics
	log    Logger

	mu      sync.RWMutex
	devices map[string]Status
}

// NewStatusTracker creates a tracker for the given topic family.
// logger may be nil.
func NewStatusTracker(topics Topics, logger Logger) *StatusTracker {
	return &StatusTracker{
		topics:  topics,
		log:     logger,
		devices: make(map[string]Status),
	}
}

// Listener returns the callback to register on the shared connection.
//
//	remove := conn.AddListener(tracker.Listener())
func (st *StatusTracker) Listener() connectivity.Listener {
	return func(msg connectivity.Message) {
		switch msg.Topic {
		case st.topics.Status():
			st.handleStatus(msg)
		case st.topics.Error():
			st.handleError(msg)
		}
	}
}

func (st *StatusTracker) handleStatus(msg connectivity.Message) {
	payload, err := ParseStatus(msg.Payload)
	if err != nil {
		if st.log != nil {
			st.log.Warn("skipping malformed status payload", "topic", msg.Topic, "error", err)
		}
		return
	}

	st.mu.Lock()
	entry := st.devices[payload.DeviceID]
	entry.DeviceID = payload.DeviceID
	entry.Status = payload.Status
	entry.Interface = payload.Interface
	entry.LastSeen = msg.ReceivedAt
	st.devices[payload.DeviceID] = entry
	st.mu.Unlock()

	if st.log != nil {
		st.log.Debug("device status updated",
			"device_id", payload.DeviceID,
			"status", payload.Status,
		)
	}
}

func (st *StatusTracker) handleError(msg connectivity.Message) {
	payload, err := ParseError(msg.Payload)
	if err != nil {
		if st.log != nil {
			st.log.Warn("skipping malformed error payload", "topic", msg.Topic, "error", err)
		}
		return
	}

	st.mu.Lock()
	entry := st.devices[payload.DeviceID]
	entry.DeviceID = payload.DeviceID
	entry.LastError = payload.Error
	entry.LastSeen = msg.ReceivedAt
	st.devices[payload.DeviceID] = entry
	st.mu.Unlock()
}

// Get returns the tracked status for a device, if any.
func (st *StatusTracker) Get(deviceID string) (Status, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.devices[deviceID]
	return s, ok
}

// Snapshot returns a copy of every tracked device status.
func (st *StatusTracker) Snapshot() map[string]Status {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[string]Status, len(st.devices))
	for id, s := range st.devices {
		out[id] = s
	}
	return out
}
