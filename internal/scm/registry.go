package scm

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/amphitheatre-app/playbooks/internal/config"
)

// Factory is a constructor function that creates a new Client instance.
type Factory func(cfg config.SCMConfig, log *slog.Logger) (Client, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes an SCM driver factory available by name.
// It is typically called from an init() function in the driver package.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("scm: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New creates a new Client using the driver named in cfg.
func New(cfg config.SCMConfig, log *slog.Logger) (Client, error) {
	name := string(cfg.Driver)

	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scm: unknown driver %q", name)
	}
	return factory(cfg, log)
}

// Available returns the sorted names of all registered drivers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
