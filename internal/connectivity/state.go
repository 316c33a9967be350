package connectivity

// State is the connection state of a Conn.
//
// Exactly one value holds at any instant. Transitions are serialized
// behind the Conn mutex; no concurrent transition application occurs.
type State int

const (
	// Disconnected is the initial state, the state after a detected
	// connection loss, and the terminal state after Shutdown.
	Disconnected State = iota

	// Connecting means a handshake attempt is in flight.
	Connecting

	// Connected means the transport handshake completed and the
	// connection is believed live (subject to keep-alive expiry).
	Connected
)

// String returns the lowercase state name for logs and status payloads.
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}
