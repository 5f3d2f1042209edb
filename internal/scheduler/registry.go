package scheduler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
)

type entry struct {
	closer   io.Closer
	lastSeen time.Time
}

// Registry tracks open sessions by key and when they were last used.
type Registry struct {
	// OnExpire is called after an idle session was closed by Sweep.
	OnExpire func(key string, c io.Closer)

	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entry), now: time.Now}
}

// Add registers a session, closing the one it replaces.
func (r *Registry) Add(key string, c io.Closer) error {
	r.mu.Lock()
	old := r.sessions[key]
	r.sessions[key] = &entry{closer: c, lastSeen: r.now()}
	r.mu.Unlock()

	if old != nil && old.closer != c {
		return old.closer.Close()
	}
	return nil
}

// Get returns the session for key and marks it as used.
func (r *Registry) Get(key string) (io.Closer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[key]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.closer, true
}

// Touch marks the session as used.
func (r *Registry) Touch(key string) {
	r.Get(key)
}

// Remove unregisters and closes the session. Missing keys are ignored.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	e, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return e.closer.Close()
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions unused for longer than idle and returns their keys.
func (r *Registry) Sweep(idle time.Duration) ([]string, error) {
	now := r.now()
	expired := make(map[string]io.Closer)

	r.mu.Lock()
	for key, e := range r.sessions {
		if now.Sub(e.lastSeen) > idle {
			expired[key] = e.closer
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	keys := make([]string, 0, len(expired))
	for key := range expired {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs error
	for _, key := range keys {
		c := expired[key]
		if err := c.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", key, err))
		}
		if r.OnExpire != nil {
			r.OnExpire(key, c)
		}
	}
	return keys, errs
}

// CloseAll closes every session.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	var errs error
	for key, e := range sessions {
		if err := e.closer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", key, err))
		}
	}
	return errs
}
