package connectivity

import "errors"

// Domain-specific errors for connectivity operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrHandshakeFailed is returned by Connect when the broker rejected
	// or never completed the handshake. The reconnect policy keeps
	// retrying in the background after this is surfaced.
	ErrHandshakeFailed = errors.New("connectivity: handshake failed")

	// ErrConnectTimeout is returned by Connect when no handshake outcome
	// arrived within the configured bound. Distinct from
	// ErrHandshakeFailed: the attempt may still be in flight.
	ErrConnectTimeout = errors.New("connectivity: connect timed out")

	// ErrSubscribeFailed marks a transport-level subscribe rejection.
	// It is never surfaced to callers of Subscribe; it appears only in
	// logs while the topic is re-queued for the next connection.
	ErrSubscribeFailed = errors.New("connectivity: subscribe failed")

	// ErrShutdown is returned to Connect callers whose in-flight attempt
	// was cancelled by a hard shutdown.
	ErrShutdown = errors.New("connectivity: shut down")
)
