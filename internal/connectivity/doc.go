// Package connectivity maintains the single long-lived MQTT connection
// between ThermalView Core and the remote device's broker.
//
// This package manages:
//   - Connection lifecycle (disconnected → connecting → connected)
//   - Subscription tracking with queue-until-connected semantics
//   - Automatic reconnection with a fixed retry delay
//   - Fan-out of every inbound message to registered listeners
//
// # Architecture
//
// One Conn exists per process, owned by a Provider constructed at the
// composition root and handed to every consumer that needs the bus.
// Consumers come and go (dashboard views mount and unmount); the Conn
// does not. Only Provider.Shutdown tears the connection down.
//
//	ThermalView Core ↔ MQTT Broker ↔ Embedded Device (RPi)
//
// Subscribe never blocks and never fails observably: topics requested
// before the connection is up are queued and registered on the broker
// the moment the connection is established, and re-registered after
// every reconnect. Publish is best-effort and is silently dropped while
// disconnected.
//
// # Usage
//
//	provider := connectivity.NewProvider(connectivity.Options{
//	    Broker: connectivity.BrokerConfig{Host: "localhost", Port: 1883},
//	})
//	conn := provider.Get()
//
//	remove := conn.AddListener(func(msg connectivity.Message) {
//	    log.Printf("%s: %s", msg.Topic, msg.Payload)
//	})
//	defer remove()
//
//	conn.Subscribe("sensors/thermal_stream", 1)
//	if err := conn.Connect(ctx); err != nil {
//	    log.Printf("initial connect failed: %v", err) // retry is automatic
//	}
package connectivity
