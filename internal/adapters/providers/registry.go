package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the configured adapters by platform name.
type Registry struct {
	adapters map[string]Adapter
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		adapters: make(map[string]Adapter),
		logger:   logger,
	}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := adapter.Platform()
	if _, exists := r.adapters[p.Name]; exists {
		return fmt.Errorf("platform %s already registered", p.Name)
	}

	r.adapters[p.Name] = adapter
	r.logger.Debug("registered platform",
		slog.String("platform", p.Name),
		slog.String("strategy", string(p.Strategy)),
		slog.Int("max_pages", p.MaxPages),
		slog.Bool("classified", p.Rules != nil),
	)
	return nil
}

// Get returns the adapter for a platform.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return adapter, nil
}

// Platform returns the descriptor for a registered platform.
func (r *Registry) Platform(name string) (Platform, error) {
	adapter, err := r.Get(name)
	if err != nil {
		return Platform{}, err
	}
	return adapter.Platform(), nil
}

// List returns the registered platform names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Platforms returns every registered descriptor, sorted by name.
func (r *Registry) Platforms() []Platform {
	names := r.List()
	out := make([]Platform, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		out = append(out, r.adapters[name].Platform())
	}
	return out
}
