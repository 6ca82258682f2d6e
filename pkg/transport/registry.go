package transport

import (
	"fmt"
	"sort"
	"sync"
)

// registryImpl implements Registry, grounded on the teacher's
// core.TransportRegistry but scoped to transports only — MeshX has no
// pluggable protocol layer above the bearer the way the teacher's
// multi-protocol gateway does.
type registryImpl struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry constructs an empty transport Registry.
func NewRegistry() Registry {
	return &registryImpl{factories: make(map[string]Factory)}
}

func (r *registryImpl) Register(factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if factory == nil {
		return fmt.Errorf("transport: nil factory")
	}
	r.factories[factory.Type()] = factory
	return nil
}

func (r *registryImpl) Get(transportType string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[transportType]
	if !ok {
		return nil, fmt.Errorf("transport: factory not registered: %s", transportType)
	}
	return f, nil
}

func (r *registryImpl) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create looks up transportType's factory, validates config against it, and
// constructs the transport.
func (r *registryImpl) Create(config Config) (Transport, error) {
	f, err := r.Get(config.Type)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(config); err != nil {
		return nil, err
	}
	return f.Create(config)
}
