package connectivity

import "sync"

// Listener receives every inbound message, regardless of topic.
// Topic filtering is the listener's own responsibility; this is what
// lets a dashboard view consume a topic some other view caused the
// transport to subscribe to, with no re-subscription.
//
// Listeners are invoked synchronously in message arrival order and
// should not block for extended periods.
type Listener func(Message)

// listenerEntry pairs a listener with a removal handle.
type listenerEntry struct {
	id int
	fn Listener
}

// dispatcher fans each inbound message out to all registered listeners.
// It has its own lock so a listener may call back into the Conn (for
// example to Subscribe) without deadlocking.
type dispatcher struct {
	mu        sync.RWMutex
	nextID    int
	listeners []listenerEntry
}

func newDispatcher() *dispatcher {
	return &dispatcher{}
}

// add registers a listener and returns a removal function. Removal is
// idempotent and touches nothing but the listener list; in particular
// it never affects the connection or the subscription registry.
func (d *dispatcher) add(fn Listener) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, e := range d.listeners {
			if e.id == id {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// broadcast delivers msg to every listener in registration order.
// Callers must invoke broadcast serially per message source; ordering
// across messages is the transport's arrival order.
func (d *dispatcher) broadcast(msg Message) {
	d.mu.RLock()
	entries := make([]listenerEntry, len(d.listeners))
	copy(entries, d.listeners)
	d.mu.RUnlock()

	for _, e := range entries {
		e.fn(msg)
	}
}

// count returns the number of registered listeners.
func (d *dispatcher) count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}
