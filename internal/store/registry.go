package store

import (
	"fmt"

	"github.com/Chapsvision-dev/company-profile-store/internal/config"
)

// Factory builds a backend instance from the loaded configuration.
type Factory func(config.Config) (Store, error)

var registry = map[string]Factory{}

// Register binds a backend name to its factory. Backends call this from
// init(); main blank-imports the backend packages it wants available.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a backend instance by name.
func New(name string, cfg config.Config) (Store, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("backend not found: %s", name)
	}
	return f(cfg)
}
