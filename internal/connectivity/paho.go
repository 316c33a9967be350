package connectivity

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Transport-level timing constants.
const (
	// defaultSubscribeTimeout bounds the wait for a SUBACK.
	defaultSubscribeTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time allowed for in-flight
	// operations when closing the transport.
	defaultDisconnectQuiesce = 250 // milliseconds

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// pahoTransport adapts paho.mqtt.golang to the Transport interface.
//
// Paho's own retry machinery is disabled: reconnection is owned by the
// connection supervisor so that subscription state and the observable
// Disconnected instant stay under one roof.
type pahoTransport struct {
	client         pahomqtt.Client
	connectTimeout time.Duration
}

// PahoFactory returns a TransportFactory backed by paho.mqtt.golang.
//
// connectTimeout bounds the handshake wait inside Connect. keepAlive is
// the MQTT keep-alive interval; its expiry is what the broker library
// reports as a lost connection.
func PahoFactory(connectTimeout, keepAlive time.Duration) TransportFactory {
	return func(cfg BrokerConfig, cb TransportCallbacks) Transport {
		opts := pahomqtt.NewClientOptions()

		scheme := "tcp"
		if cfg.TLS {
			scheme = "ssl"
		}
		opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
		opts.SetClientID(cfg.ClientID)

		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
			opts.SetPassword(cfg.Password)
		}

		// Clean session: subscription state is rebuilt from the
		// registry on every connect, not from broker-side sessions.
		opts.SetCleanSession(true)

		// The supervisor schedules reconnects; paho must not.
		opts.SetAutoReconnect(false)
		opts.SetConnectRetry(false)

		opts.SetConnectTimeout(connectTimeout)
		opts.SetKeepAlive(keepAlive)

		// All inbound messages funnel through the default handler in
		// arrival order; per-topic routing is the consumers' job.
		opts.SetOrderMatters(true)
		opts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
			cb.OnMessage(msg.Topic(), msg.Payload())
		})
		opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			cb.OnConnectionLost(err)
		})

		if cfg.TLS {
			opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
		}

		return &pahoTransport{
			client:         pahomqtt.NewClient(opts),
			connectTimeout: connectTimeout,
		}
	}
}

func (t *pahoTransport) Connect() error {
	token := t.client.Connect()
	if !token.WaitTimeout(t.connectTimeout) {
		return fmt.Errorf("%w: no broker response within %v", ErrConnectTimeout, t.connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}
	return nil
}

func (t *pahoTransport) Subscribe(topic string, qos byte) error {
	// nil handler routes messages to the default handler set above.
	token := t.client.Subscribe(topic, qos, nil)
	if !token.WaitTimeout(defaultSubscribeTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultSubscribeTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

func (t *pahoTransport) Publish(topic string, payload []byte, qos byte) error {
	// Fire and forget: the caller must never block on broker
	// acknowledgement. QoS handling is paho's concern.
	t.client.Publish(topic, qos, false, payload)
	return nil
}

func (t *pahoTransport) Disconnect(quiesce uint) {
	t.client.Disconnect(quiesce)
}
