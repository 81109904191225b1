package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderNotFound is returned when no provider carries the identity
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDuplicateProvider is returned when two providers normalize to the same identity
	ErrDuplicateProvider = errors.New("provider already registered")
)

// Registry is the ordered, immutable set of providers built at startup.
// It holds no locks: nothing mutates it after NewRegistry returns.
type Registry struct {
	ordered []Provider
	byName  map[string]Provider
}

// NormalizeIdentity folds a provider name for lookup
func NormalizeIdentity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewRegistry creates a registry holding list in order
func NewRegistry(list ...Provider) (*Registry, error) {
	r := &Registry{
		ordered: make([]Provider, 0, len(list)),
		byName:  make(map[string]Provider, len(list)),
	}

	for i, p := range list {
		if p == nil {
			return nil, fmt.Errorf("provider at position %d is nil", i)
		}
		name := NormalizeIdentity(p.Identity())
		if name == "" {
			return nil, fmt.Errorf("provider at position %d has an empty identity", i)
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
		}
		r.byName[name] = p
		r.ordered = append(r.ordered, p)
	}

	return r, nil
}

// All returns the providers in registration order
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Lookup finds a provider by case-insensitive identity
func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.byName[NormalizeIdentity(name)]
	return p, ok
}

// Get is Lookup with an error for the miss
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, NormalizeIdentity(name))
	}
	return p, nil
}

// Names returns the normalized identities in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, NormalizeIdentity(p.Identity()))
	}
	return names
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	return len(r.ordered)
}
