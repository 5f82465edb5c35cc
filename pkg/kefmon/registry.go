package kefmon

import (
	"sort"
	"sync"

	"kefctl/pkg/kef"
)

// Registry tracks configured speakers by host:port so the host
// platform does not set up the same endpoint twice. The client itself
// stays free of global state.
type Registry struct {
	mu       sync.Mutex
	speakers map[string]*kef.Speaker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{speakers: make(map[string]*kef.Speaker)}
}

// Add registers a speaker under its address. It reports false when the
// address is already registered, leaving the existing entry in place.
func (r *Registry) Add(s *kef.Speaker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.speakers[s.Addr()]; ok {
		return false
	}
	r.speakers[s.Addr()] = s
	return true
}

// Get returns the speaker registered under addr, if any.
func (r *Registry) Get(addr string) (*kef.Speaker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.speakers[addr]
	return s, ok
}

// Remove drops the speaker registered under addr.
func (r *Registry) Remove(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.speakers, addr)
}

// Addrs returns the registered addresses in sorted order.
func (r *Registry) Addrs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := make([]string, 0, len(r.speakers))
	for addr := range r.speakers {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}
