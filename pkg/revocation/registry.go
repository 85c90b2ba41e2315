// Package revocation tracks revoked credential references until they would
// have expired on their own.
package revocation

import (
	"sync"
	"time"
)

// Registry is an in-process set of revoked references (session ids or token
// jtis). Each entry remembers when the underlying credential expires so Prune
// can forget it once it no longer matters. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{revoked: make(map[string]time.Time)}
}

// Revoke marks ref as revoked until expiresAt. Revoking twice keeps the later
// expiry.
func (r *Registry) Revoke(ref string, expiresAt time.Time) {
	if ref == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.revoked[ref]; ok && prev.After(expiresAt) {
		return
	}
	r.revoked[ref] = expiresAt
}

// IsRevoked reports whether ref has been revoked.
func (r *Registry) IsRevoked(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[ref]
	return ok
}

// Prune drops entries whose credentials have expired at now and returns how
// many were dropped.
func (r *Registry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for ref, exp := range r.revoked {
		if !now.Before(exp) {
			delete(r.revoked, ref)
			n++
		}
	}
	return n
}

// Len returns the number of tracked references.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}
