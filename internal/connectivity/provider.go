package connectivity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// defaultClientIDPrefix is used when no client ID is configured.
const defaultClientIDPrefix = "thermalview"

// clientIDSuffixLen is how many UUID characters are appended to the
// configured prefix to make the client ID unique per process.
const clientIDSuffixLen = 8

// Provider owns the one Conn of the process.
//
// It replaces a module-level shared client: the composition root
// constructs a single Provider and injects it into every consumer.
// Get lazily builds the Conn on first call; every later call returns
// the same instance no matter how many views mount and unmount.
// Consumers going away is a no-op for the connection; only Shutdown
// tears it down.
type Provider struct {
	opts Options

	once sync.Once
	mu   sync.Mutex
	conn *Conn
}

// NewProvider creates a Provider. No connection work happens here;
// the Conn is built on first Get and connects only when asked to.
func NewProvider(opts Options) *Provider {
	return &Provider{opts: opts}
}

// Get returns the shared Conn, constructing it on first call.
//
// Construction finalises the broker identity: the client ID is the
// configured ID (or "thermalview" if none) plus a random suffix, so a
// restarted process never collides with a stale broker session. The
// resulting BrokerConfig is reused unchanged by every reconnect.
func (p *Provider) Get() *Conn {
	p.once.Do(func() {
		opts := p.opts
		prefix := opts.Broker.ClientID
		if prefix == "" {
			prefix = defaultClientIDPrefix
		}
		opts.Broker.ClientID = fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:clientIDSuffixLen])

		p.mu.Lock()
		p.conn = newConn(opts)
		p.mu.Unlock()
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

// Shutdown hard-stops the shared Conn if it was ever constructed.
// Safe to call multiple times and safe to call before any Get.
func (p *Provider) Shutdown() {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn != nil {
		conn.Shutdown()
	}
}
