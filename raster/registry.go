package raster

import (
	"fmt"
	"sort"
	"sync"
)

// Backend names.
const (
	// BackendGG is the production backend built on github.com/gogpu/gg.
	BackendGG = "gg"
	// BackendVector is the alternate backend built on golang.org/x/image/vector.
	BackendVector = "vector"
)

// Factory creates a rasterizer.
type Factory func() Rasterizer

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default (first registered wins).
	backendPriority = []string{BackendGG, BackendVector}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, priority backends first,
// the rest sorted by name.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	seen := make(map[string]bool, len(backendPriority))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a rasterizer by name.
func Get(name string) (Rasterizer, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Available())
	}
	return factory(), nil
}

// MustGet returns a rasterizer by name or panics.
func MustGet(name string) Rasterizer {
	r, err := Get(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the best available rasterizer and its name.
func Default() (Rasterizer, string, error) {
	names := Available()
	if len(names) == 0 {
		return nil, "", ErrNoBackend
	}
	r, err := Get(names[0])
	if err != nil {
		return nil, "", err
	}
	return r, names[0], nil
}
