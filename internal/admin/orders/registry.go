package orders

import (
	"errors"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an unused session controller is retained.
const DefaultIdleTTL = 30 * time.Minute

// Registry keeps one Controller per console session so each staff member sees their own
// list and detail state.
type Registry struct {
	factory func() (*Controller, error)
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	controller *Controller
	lastUsed   time.Time
}

// NewRegistry builds controllers with opts. Token is ignored and set per request via For.
func NewRegistry(opts Options, ttl time.Duration) (*Registry, error) {
	if opts.Backend == nil {
		return nil, errors.New("orders: backend is required")
	}
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		factory: func() (*Controller, error) {
			o := opts
			o.Token = ""
			return NewController(o)
		},
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*registryEntry),
	}, nil
}

// For returns the controller bound to sessionID, creating it on first use, and updates its
// token. Idle controllers of other sessions are evicted on the way.
func (r *Registry) For(sessionID, token string) (*Controller, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	entry, ok := r.entries[sessionID]
	if !ok {
		ctrl, err := r.factory()
		if err != nil {
			return nil, err
		}
		entry = &registryEntry{controller: ctrl}
		r.entries[sessionID] = entry
	}
	entry.lastUsed = now
	entry.controller.SetToken(token)
	return entry.controller, nil
}

// Forget drops the controller bound to sessionID.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

// Len reports the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) sweepLocked(now time.Time) {
	for id, entry := range r.entries {
		if now.Sub(entry.lastUsed) > r.ttl {
			delete(r.entries, id)
		}
	}
}
