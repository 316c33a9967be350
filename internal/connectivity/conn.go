package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Default policy values. ReconnectDelay is deliberately a flat delay,
// not a backoff curve: the device is expected to eventually come back,
// and a 5 second cadence against a single local broker is harmless.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReconnectDelay = 5 * time.Second
	DefaultKeepAlive      = 60 * time.Second

	maxQoS = 2
)

// Logger is the narrow logging interface the package needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards everything. Used when Options.Logger is nil.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Conn.
type Options struct {
	// Broker identifies the endpoint. If ClientID is empty the Provider
	// generates one, unique per process instantiation.
	Broker BrokerConfig

	// ConnectTimeout bounds each Connect call and each handshake.
	// Defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// ReconnectDelay is the flat delay before each automatic reconnect
	// attempt. Defaults to DefaultReconnectDelay.
	ReconnectDelay time.Duration

	// KeepAlive is the transport keep-alive interval; its expiry is the
	// sole staleness detector. Defaults to DefaultKeepAlive.
	KeepAlive time.Duration

	// Transport builds the broker connection. Defaults to
	// PahoFactory(ConnectTimeout, KeepAlive).
	Transport TransportFactory

	// Logger is optional.
	Logger Logger
}

func (o *Options) applyDefaults() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.Transport == nil {
		o.Transport = PahoFactory(o.ConnectTimeout, o.KeepAlive)
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
}

// connectAttempt is one in-flight handshake. Concurrent Connect callers
// coalesce onto it: all of them observe the same outcome. done is
// closed exactly once, by the goroutine running the handshake, after
// err is set.
type connectAttempt struct {
	done chan struct{}
	err  error

	// lossErr records a loss reported after the transport handshake
	// succeeded but before its result was committed. Guarded by the
	// owning Conn's mu.
	lossErr error
}

// Conn is the process-wide connectivity instance.
//
// All connection-state and registry mutation is serialized behind mu:
// concurrent Subscribe calls, transport callbacks, and reconnect timer
// fires all funnel through it, so at most one state transition or
// registry edit is applied at a time.
//
// Thread Safety: all methods are safe for concurrent use.
type Conn struct {
	opts Options
	log  Logger

	mu        sync.Mutex
	state     State
	transport Transport       // non-nil from attempt start until loss/shutdown
	attempt   *connectAttempt // non-nil while Connecting
	reconnect *time.Timer     // pending automatic reconnect, nil otherwise
	draining  bool            // a drain pass is in flight
	closed    bool            // hard shutdown: suppresses reconnects

	registry   *registry // guarded by mu
	dispatcher *dispatcher

	dropped atomic.Uint64 // publishes discarded while not connected
}

// newConn builds a Conn. Construction does not touch the network;
// nothing happens until Connect.
func newConn(opts Options) *Conn {
	opts.applyDefaults()
	return &Conn{
		opts:       opts,
		log:        opts.Logger,
		state:      Disconnected,
		registry:   newRegistry(),
		dispatcher: newDispatcher(),
	}
}

// Connect brings the connection up.
//
// Idempotent: returns nil immediately if already connected. If a
// handshake is already in flight the caller coalesces onto it and
// observes the same outcome. Otherwise a fresh attempt starts.
//
// The call is bounded by Options.ConnectTimeout and by ctx. It fails
// fast and once: ErrHandshakeFailed and ErrConnectTimeout are surfaced
// here, and retry continues in the background on the reconnect cadence
// regardless of what the caller does with the error.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Connected {
		c.mu.Unlock()
		return nil
	}
	// An explicit Connect after Shutdown starts from a clean slate.
	c.closed = false
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	att := c.attempt
	if att == nil {
		att = c.beginAttempt()
	}
	timeout := c.opts.ConnectTimeout
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-att.done:
		return att.err
	case <-timer.C:
		return ErrConnectTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginAttempt transitions to Connecting and starts the handshake.
// Caller must hold mu.
func (c *Conn) beginAttempt() *connectAttempt {
	att := &connectAttempt{done: make(chan struct{})}
	c.attempt = att
	c.setState(Connecting)

	// tr is captured by the callbacks so events from a stale transport
	// epoch can be recognised and ignored.
	var tr Transport
	tr = c.opts.Transport(c.opts.Broker, TransportCallbacks{
		OnConnectionLost: func(err error) { c.handleConnectionLost(tr, err) },
		OnMessage:        c.handleInbound,
	})
	c.transport = tr

	go c.runHandshake(att, tr)
	return att
}

// runHandshake drives one handshake to completion and applies the
// resulting transition. It is the sole closer of att.done.
func (c *Conn) runHandshake(att *connectAttempt, tr Transport) {
	err := tr.Connect()

	c.mu.Lock()
	if c.attempt != att {
		// Superseded by a hard shutdown while we were waiting.
		c.mu.Unlock()
		if err == nil {
			tr.Disconnect(defaultDisconnectQuiesce)
		}
		att.err = ErrShutdown
		close(att.done)
		return
	}
	c.attempt = nil

	if err != nil {
		c.setState(Disconnected)
		c.transport = nil
		c.scheduleReconnect()
		c.mu.Unlock()

		c.log.Warn("broker handshake failed", "error", err)
		att.err = err
		close(att.done)
		return
	}

	if att.lossErr != nil {
		// The transport came up and dropped again before this commit.
		// It reports loss at most once per connection, so the parked
		// event is applied here instead of settling Connected on a
		// dead transport. Callers see a successful Connect followed by
		// an immediate loss; the reconnect cadence takes over.
		c.setState(Disconnected)
		c.transport = nil
		c.registry.deactivateAll()
		c.scheduleReconnect()
		c.mu.Unlock()

		c.log.Warn("broker connection lost before handshake settled", "error", att.lossErr)
		close(att.done)
		return
	}

	c.setState(Connected)
	c.registry.resetDeferred()
	c.kickDrain()
	c.mu.Unlock()

	c.log.Info("connected to broker",
		"host", c.opts.Broker.Host,
		"port", c.opts.Broker.Port,
		"client_id", c.opts.Broker.ClientID,
	)
	close(att.done)
}

// handleConnectionLost reacts to a transport-reported loss. Events from
// superseded transports are ignored.
func (c *Conn) handleConnectionLost(tr Transport, err error) {
	c.mu.Lock()
	if c.transport != tr {
		c.mu.Unlock()
		return
	}
	if c.state == Connecting {
		// Loss arrived in the window between the handshake succeeding
		// and runHandshake committing the result. Park it on the
		// attempt; the commit applies it.
		if c.attempt != nil {
			c.attempt.lossErr = err
		}
		c.mu.Unlock()
		return
	}
	if c.state != Connected {
		c.mu.Unlock()
		return
	}
	// Pass through an observable Disconnected instant; the move to
	// Connecting happens only when the reconnect timer fires.
	c.setState(Disconnected)
	c.transport = nil
	c.registry.deactivateAll()
	pending := c.registry.pendingLen()
	c.scheduleReconnect()
	c.mu.Unlock()

	c.log.Warn("broker connection lost",
		"error", err,
		"pending_subscriptions", pending,
	)
}

// scheduleReconnect arms the flat-delay retry timer. Caller must hold
// mu. No-op after Shutdown or if a timer is already armed. There is no
// retry cap: attempts continue until Connected or hard shutdown.
func (c *Conn) scheduleReconnect() {
	if c.closed || c.reconnect != nil {
		return
	}
	c.reconnect = time.AfterFunc(c.opts.ReconnectDelay, func() {
		c.mu.Lock()
		c.reconnect = nil
		if c.closed || c.state != Disconnected {
			c.mu.Unlock()
			return
		}
		c.beginAttempt()
		c.mu.Unlock()
	})
}

// setState applies a state transition. Caller must hold mu.
func (c *Conn) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
}

// Subscribe registers interest in a topic. It never blocks on the
// network and never fails observably.
//
// If the connection is not up (or the broker later rejects the
// registration) the topic is queued and registered on the next
// successful connect. Duplicate requests for a topic already active or
// already queued are ignored, so two views asking for the same topic
// cause exactly one broker registration.
func (c *Conn) Subscribe(topic string, qos byte) {
	if topic == "" {
		c.log.Warn("ignoring subscribe with empty topic")
		return
	}
	if qos > maxQoS {
		c.log.Warn("invalid QoS on subscribe, using 0", "topic", topic, "qos", qos)
		qos = 0
	}

	c.mu.Lock()
	if c.registry.add(topic, qos) {
		c.kickDrain()
	}
	c.mu.Unlock()
}

// kickDrain starts a drain pass if one is warranted and none is in
// flight. Caller must hold mu.
func (c *Conn) kickDrain() {
	if c.draining || c.state != Connected || c.registry.readyLen() == 0 {
		return
	}
	c.draining = true
	go c.drainLoop(c.transport)
}

// drainLoop registers queued topics on the transport, one pass per
// batch, until the queue is empty or the connection epoch ends. At most
// one drain pass is in flight per Conn.
//
// Broker-rejected topics are re-queued as deferred: they stay pending
// and are retried on the next successful connect, bounded by the
// reconnect cadence rather than by any inner retry count.
func (c *Conn) drainLoop(tr Transport) {
	for {
		c.mu.Lock()
		if c.state != Connected || c.transport != tr || c.registry.readyLen() == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		batch := c.registry.takeReady()
		c.mu.Unlock()

		var registered, rejected []subscription
		for _, s := range batch {
			if err := tr.Subscribe(s.topic, s.qos); err != nil {
				c.log.Warn("subscription registration failed, will retry on next connect",
					"topic", s.topic,
					"error", err,
				)
				rejected = append(rejected, s)
				continue
			}
			registered = append(registered, s)
		}

		c.mu.Lock()
		switch {
		case c.state == Connected && c.transport == tr:
			c.registry.activate(registered)
			c.registry.requeue(rejected, true)
		case c.closed:
			// Hard shutdown mid-drain: intent is cleared, drop the batch.
		default:
			// Epoch ended mid-drain: the whole batch goes back to
			// pending for the next connection.
			c.registry.requeue(batch, false)
		}
		c.mu.Unlock()
	}
}

// handleInbound stamps an arrival time on a raw transport message and
// broadcasts it. The transport delivers serially in arrival order, and
// broadcast preserves that order.
func (c *Conn) handleInbound(topic string, payload []byte) {
	c.dispatcher.broadcast(Message{
		Topic:      topic,
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

// AddListener registers a listener for every inbound message and
// returns its removal function. Removing a listener is an ordinary
// view-teardown operation: it never disconnects and never touches the
// subscription registry.
func (c *Conn) AddListener(fn Listener) func() {
	return c.dispatcher.add(fn)
}

// Publish sends a message if connected.
//
// While not connected the message is silently dropped: no error, no
// queueing. Subscriptions survive a disconnect, publishes do not; the
// asymmetry is deliberate and matches the device contract. Dropped
// counts are exposed via DroppedPublishes.
func (c *Conn) Publish(topic string, payload []byte, qos byte) {
	if qos > maxQoS {
		qos = 0
	}

	c.mu.Lock()
	tr := c.transport
	connected := c.state == Connected
	c.mu.Unlock()

	if !connected || tr == nil {
		c.dropped.Add(1)
		c.log.Debug("publish dropped while not connected", "topic", topic)
		return
	}
	if err := tr.Publish(topic, payload, qos); err != nil {
		c.log.Warn("publish failed", "topic", topic, "error", err)
	}
}

// IsConnected reports whether the connection is currently up.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connected
}

// IsConnecting reports whether a handshake is currently in flight.
func (c *Conn) IsConnecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connecting
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DroppedPublishes returns how many publishes have been discarded
// because the connection was down.
func (c *Conn) DroppedPublishes() uint64 {
	return c.dropped.Load()
}

// ActiveTopics returns the topics currently registered on the
// transport. Diagnostic use.
func (c *Conn) ActiveTopics() map[string]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.activeTopics()
}

// PendingTopics returns the topics queued for registration, oldest
// request first. Diagnostic use.
func (c *Conn) PendingTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.pendingTopics()
}

// Shutdown is the hard stop, distinct from any consumer going away. It
// cancels pending reconnects, closes the transport, clears the active
// and pending sets, and leaves the state Disconnected. No reconnection
// is scheduled afterwards. A later explicit Connect starts fresh.
func (c *Conn) Shutdown() {
	c.mu.Lock()
	c.closed = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	// Detach any in-flight attempt; runHandshake resolves its waiters
	// with ErrShutdown when it notices.
	c.attempt = nil
	tr := c.transport
	c.transport = nil
	c.registry.clear()
	c.setState(Disconnected)
	c.mu.Unlock()

	if tr != nil {
		tr.Disconnect(defaultDisconnectQuiesce)
	}
	c.log.Info("connectivity shut down")
}
