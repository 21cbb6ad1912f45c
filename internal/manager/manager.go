// Package manager exposes the profile CRUD surface over exactly one bound
// storage backend. It layers nothing on top: no caching, no buffering, no
// retries — backend failures propagate unchanged.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/company-profile-store/internal/config"
	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
	"github.com/Chapsvision-dev/company-profile-store/internal/store"
)

// ErrExists marks a Create against an id that is already stored.
var ErrExists = errors.New("profile already exists")

// Manager binds one backend for its lifetime; the backend never changes
// after construction.
type Manager struct {
	store store.Store
}

// New wraps an explicitly chosen backend.
func New(s store.Store) *Manager {
	return &Manager{store: s}
}

// FromConfig auto-selects the backend from the environment snapshot:
// azure in production with complete remote config, local otherwise.
func FromConfig(cfg config.Config) (*Manager, error) {
	name := store.Select(cfg)
	s, err := store.New(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s backend: %w", name, err)
	}
	log.Info().
		Str("action", "backend_select").
		Str("backend", name).
		Str("environment", cfg.Environment).
		Msg("storage backend selected")
	return New(s), nil
}

// Backend returns the bound store.
func (m *Manager) Backend() store.Store { return m.store }

func (m *Manager) Load(ctx context.Context, id string) (profile.Record, error) {
	return m.store.Get(ctx, id)
}

func (m *Manager) Save(ctx context.Context, id string, rec profile.Record) error {
	return m.store.Put(ctx, id, rec)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	return m.store.Exists(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Create stores a new profile built from fields, refusing to clobber an
// existing id.
func (m *Manager) Create(ctx context.Context, id string, fields map[string]any) (profile.Record, error) {
	ok, err := m.store.Exists(ctx, id)
	if err != nil {
		return profile.Record{}, err
	}
	if ok {
		return profile.Record{}, fmt.Errorf("profile %q: %w", id, ErrExists)
	}
	rec, err := profile.New(id, fields)
	if err != nil {
		return profile.Record{}, err
	}
	if err := m.store.Put(ctx, id, rec); err != nil {
		return profile.Record{}, err
	}
	return rec, nil
}

// Update merges updates over the stored fields and saves the result.
// The id is immutable; an "id" key in updates is ignored.
func (m *Manager) Update(ctx context.Context, id string, updates map[string]any) (profile.Record, error) {
	current, err := m.store.Get(ctx, id)
	if err != nil {
		return profile.Record{}, err
	}
	fields, err := current.Fields()
	if err != nil {
		return profile.Record{}, fmt.Errorf("profile %q: %v: %w", id, err, store.ErrCorruptData)
	}
	for k, v := range updates {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	rec, err := profile.New(id, fields)
	if err != nil {
		return profile.Record{}, err
	}
	if err := m.store.Put(ctx, id, rec); err != nil {
		return profile.Record{}, err
	}
	return rec, nil
}
