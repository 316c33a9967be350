package connectivity

import "time"

// BrokerConfig identifies the broker endpoint and this process's
// identity on it. Built once at Provider construction and reused for
// every reconnect; never mutated afterwards.
type BrokerConfig struct {
	Host     string
	Port     int
	TLS      bool
	ClientID string
	Username string
	Password string
}

// Message is a single inbound message as delivered to listeners.
// It is ephemeral: broadcast once, never persisted.
type Message struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Transport is the duplex connection to the broker. The connection
// supervisor is the only component that holds one.
//
// Implementations translate whatever callback style the underlying
// library uses into these result-returning calls; the rest of the
// package stays free of callback threading.
type Transport interface {
	// Connect performs the handshake, blocking until it succeeds,
	// fails, or the transport's own bound expires. Errors wrap
	// ErrHandshakeFailed or ErrConnectTimeout.
	Connect() error

	// Subscribe registers a topic on the broker. Inbound messages for
	// it are delivered through TransportCallbacks.OnMessage.
	Subscribe(topic string, qos byte) error

	// Publish sends a message. It must not block the caller; delivery
	// is best-effort at the given QoS.
	Publish(topic string, payload []byte, qos byte) error

	// Disconnect closes the connection, allowing quiesce milliseconds
	// for in-flight work. Safe to call in any state.
	Disconnect(quiesce uint)
}

// TransportCallbacks is handed to a TransportFactory at construction.
// OnConnectionLost fires when an established connection drops (never
// for a failed handshake). OnMessage fires for every inbound message,
// in arrival order.
type TransportCallbacks struct {
	OnConnectionLost func(err error)
	OnMessage        func(topic string, payload []byte)
}

// TransportFactory builds a fresh Transport for one connection attempt.
// Tests substitute a scripted fake here.
type TransportFactory func(cfg BrokerConfig, cb TransportCallbacks) Transport
