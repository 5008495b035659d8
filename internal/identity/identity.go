// Package identity wraps the external identity/verification collaborator that
// decides whether an address is an eligible holder. The engine consumes only
// the Gate capability; registration and management stay on the collaborator's
// side of the boundary.
package identity

import (
	"context"
	"sync"

	"trellis/pkg/domain"
)

// Gate answers "is address X an eligible holder?". Injected into the engine
// so a stub can stand in during tests.
type Gate interface {
	IsEligible(ctx context.Context, addr domain.Address) (bool, error)
}

// Registry is the in-memory eligibility registry. It doubles as the
// collaborator's registration surface for deployments without an external
// verification service.
type Registry struct {
	mu       sync.RWMutex
	eligible map[domain.Address]struct{}
}

var _ Gate = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{eligible: make(map[domain.Address]struct{})}
}

// Register marks the given addresses as eligible holders.
func (r *Registry) Register(_ context.Context, addrs ...domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, addr := range addrs {
		r.eligible[addr] = struct{}{}
	}
	return nil
}

// Deregister revokes eligibility. Existing balances are untouched; the
// address simply can no longer receive value.
func (r *Registry) Deregister(_ context.Context, addrs ...domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, addr := range addrs {
		delete(r.eligible, addr)
	}
	return nil
}

func (r *Registry) IsEligible(_ context.Context, addr domain.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.eligible[addr]
	return ok, nil
}
