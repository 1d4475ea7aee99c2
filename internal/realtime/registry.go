package realtime

import (
	"sort"
	"sync"
)

// Registry maps a user identity to its open connections. One user may hold
// several connections at once (multiple tabs or devices). An identity is
// present iff it has at least one open connection.
//
// The registry is shared between the hub goroutine and the dispatcher
// goroutine, so every operation takes the lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]map[*Client]struct{}),
	}
}

// Register adds the connection under the identity, creating the entry on
// first connect. Registering the same connection twice is a no-op.
func (r *Registry) Register(identity string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[identity]
	if !ok {
		set = make(map[*Client]struct{})
		r.conns[identity] = set
	}
	set[c] = struct{}{}
}

// Deregister removes the connection and drops the identity entry once its
// last connection is gone. Unknown identities or connections are ignored,
// so a late deregister from an already-closed connection is harmless.
func (r *Registry) Deregister(identity string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[identity]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, identity)
	}
}

// Lookup returns a snapshot of the identity's open connections. Empty for
// an offline identity.
func (r *Registry) Lookup(identity string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.conns[identity]
	if !ok {
		return nil
	}
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

// OnlineIdentities returns a sorted snapshot of identities with at least
// one open connection.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.conns))
	for identity := range r.conns {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	return identities
}
