package objectstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const (
	DriverS3 = "s3"
	DriverFS = "fs"
)

// DriverFactory builds a Store from its settings.
type DriverFactory func(ctx context.Context, settings Settings) (Store, error)

// Registry manages object storage driver factories
type Registry interface {
	// Register adds a new driver factory
	Register(driver string, factory DriverFactory) error
	// Create instantiates the driver named in settings
	Create(ctx context.Context, settings Settings) (Store, error)
	// ListDrivers returns the registered driver names, sorted
	ListDrivers() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]DriverFactory
}

// NewRegistry creates a registry holding the given factories.
func NewRegistry(factories map[string]DriverFactory) Registry {
	r := &registry{
		factories: make(map[string]DriverFactory, len(factories)),
	}
	for name, f := range factories {
		r.factories[name] = f
	}
	return r
}

// DefaultRegistry knows the s3 and fs drivers.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]DriverFactory{
		DriverS3: S3Factory,
		DriverFS: FSFactory,
	})
}

func (r *registry) Register(driver string, factory DriverFactory) error {
	if driver == "" {
		return fmt.Errorf("driver name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[driver]; exists {
		return fmt.Errorf("driver %q is already registered", driver)
	}

	r.factories[driver] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, settings Settings) (Store, error) {
	r.mu.RLock()
	factory, exists := r.factories[settings.Driver]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("storage driver %q is not registered", settings.Driver)
	}

	return factory(ctx, settings)
}

func (r *registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}
