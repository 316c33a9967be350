package connectivity

// subscription is one tracked topic and its requested QoS.
//
// deferred marks a topic whose registration was rejected by the broker
// in the current connection epoch. Deferred topics stay in pending but
// are not retried until the next successful connect, so a persistently
// rejecting broker cannot drive a hot retry loop.
type subscription struct {
	topic    string
	qos      byte
	deferred bool
}

// registry tracks which topics are registered on the transport (active)
// and which await a usable connection (pending). A topic is never in
// both. Not self-locking: every method must be called with the owning
// Conn's mutex held, so active/pending edits are atomic with respect to
// connection-state transitions.
type registry struct {
	active      map[string]byte // topic -> qos
	activeOrder []string        // insertion order, for verbatim demotion
	pending     []subscription  // FIFO by request time
	pendingSet  map[string]struct{}
	inflight    map[string]struct{} // taken by a drain pass, not yet active
}

func newRegistry() *registry {
	return &registry{
		active:     make(map[string]byte),
		pendingSet: make(map[string]struct{}),
		inflight:   make(map[string]struct{}),
	}
}

// add queues a topic for registration. Returns false if the topic is
// already active, already pending, or part of an in-flight drain batch
// (duplicate request, ignored).
func (r *registry) add(topic string, qos byte) bool {
	if _, ok := r.active[topic]; ok {
		return false
	}
	if _, ok := r.pendingSet[topic]; ok {
		return false
	}
	if _, ok := r.inflight[topic]; ok {
		return false
	}
	r.pending = append(r.pending, subscription{topic: topic, qos: qos})
	r.pendingSet[topic] = struct{}{}
	return true
}

// takeReady removes and returns the pending topics eligible for a drain
// pass, oldest request first. Deferred topics are left in place. Taken
// topics move to the in-flight set so they stay visible to add until
// they are activated or requeued: a duplicate request arriving while
// the batch is being registered merges instead of queueing again.
func (r *registry) takeReady() []subscription {
	var ready, rest []subscription
	for _, s := range r.pending {
		if s.deferred {
			rest = append(rest, s)
		} else {
			ready = append(ready, s)
			delete(r.pendingSet, s.topic)
			r.inflight[s.topic] = struct{}{}
		}
	}
	r.pending = rest
	return ready
}

// activate records topics as registered on the transport.
func (r *registry) activate(subs []subscription) {
	for _, s := range subs {
		delete(r.inflight, s.topic)
		if _, ok := r.active[s.topic]; ok {
			continue
		}
		r.active[s.topic] = s.qos
		r.activeOrder = append(r.activeOrder, s.topic)
	}
}

// requeue returns topics to pending, preserving their order. deferred
// controls whether they are eligible for the current epoch's drain.
func (r *registry) requeue(subs []subscription, deferred bool) {
	for _, s := range subs {
		delete(r.inflight, s.topic)
		if _, ok := r.pendingSet[s.topic]; ok {
			continue
		}
		s.deferred = deferred
		r.pending = append(r.pending, s)
		r.pendingSet[s.topic] = struct{}{}
	}
}

// resetDeferred clears the deferred mark on every pending topic. Called
// on each transition into Connected so previously rejected topics get
// another try.
func (r *registry) resetDeferred() {
	for i := range r.pending {
		r.pending[i].deferred = false
	}
}

// deactivateAll demotes every active topic back to pending in original
// subscription order. Called on connection loss; no unsubscribe is
// attempted because the transport is already gone. Subscriber intent
// survives the blip, delivery does not.
func (r *registry) deactivateAll() {
	for _, topic := range r.activeOrder {
		qos, ok := r.active[topic]
		if !ok {
			continue
		}
		if _, dup := r.pendingSet[topic]; dup {
			continue
		}
		r.pending = append(r.pending, subscription{topic: topic, qos: qos})
		r.pendingSet[topic] = struct{}{}
	}
	r.active = make(map[string]byte)
	r.activeOrder = nil
}

// clear drops all tracked state. Hard shutdown only.
func (r *registry) clear() {
	r.active = make(map[string]byte)
	r.activeOrder = nil
	r.pending = nil
	r.pendingSet = make(map[string]struct{})
	r.inflight = make(map[string]struct{})
}

// activeTopics returns a copy of the active set.
func (r *registry) activeTopics() map[string]byte {
	out := make(map[string]byte, len(r.active))
	for topic, qos := range r.active {
		out[topic] = qos
	}
	return out
}

// pendingTopics returns the pending topics in queue order.
func (r *registry) pendingTopics() []string {
	out := make([]string, 0, len(r.pending))
	for _, s := range r.pending {
		out = append(out, s.topic)
	}
	return out
}

func (r *registry) pendingLen() int { return len(r.pending) }

// readyLen counts pending topics eligible for the current epoch.
func (r *registry) readyLen() int {
	n := 0
	for _, s := range r.pending {
		if !s.deferred {
			n++
		}
	}
	return n
}
