package orchestrator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

var (
	ErrContractNotFound  = errors.New("contract not found in registry")
	ErrAlreadyRegistered = errors.New("contract already registered")
)

// Registry holds the contracts deployed during a run, by logical name.
// Each name is written once and read any number of times.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*contracts.Deployment
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*contracts.Deployment)}
}

func (r *Registry) Save(d *contracts.Deployment) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("cannot register a deployment without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.Name)
	}
	r.entries[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get fails with ErrContractNotFound when the stage that deploys name has
// not run.
func (r *Registry) Get(name string) (*contracts.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, name)
	}
	return d, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// All returns deployments in the order they were saved.
func (r *Registry) All() []*contracts.Deployment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*contracts.Deployment, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}
