// Package local implements the profile store on the filesystem: one
// <id>.json file per record under a root directory. It is the development
// default and the migration source.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/company-profile-store/internal/config"
	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
	"github.com/Chapsvision-dev/company-profile-store/internal/store"
)

// Store persists records under a single root directory, no nesting.
type Store struct {
	root string
}

var _ store.Store = (*Store)(nil)

// New creates the root directory if needed and returns the backend.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./profiles"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create profiles dir %q: %w", root, store.ErrUnavailable)
	}
	return &Store{root: root}, nil
}

func (s *Store) Name() string { return store.NameLocal }

// Root returns the configured profile directory.
func (s *Store) Root() string { return s.root }

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.root, store.KeyFor(id))
}

func (s *Store) Get(_ context.Context, id string) (profile.Record, error) {
	if err := store.ValidateID(id); err != nil {
		return profile.Record{}, err
	}
	data, err := os.ReadFile(s.pathFor(id))
	if errors.Is(err, fs.ErrNotExist) {
		return profile.Record{}, fmt.Errorf("profile %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return profile.Record{}, fmt.Errorf("read profile %q: %v: %w", id, err, store.ErrUnavailable)
	}
	rec, err := profile.Decode(data)
	if err != nil {
		return profile.Record{}, fmt.Errorf("profile %q: %v: %w", id, err, store.ErrCorruptData)
	}
	return rec, nil
}

// Put writes to a temp file in the root and renames it into place, so a
// concurrent Get observes either the old or the new content in full.
func (s *Store) Put(_ context.Context, id string, rec profile.Record) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, store.ErrUnavailable)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(rec.Encode()); err != nil {
		cleanup()
		return fmt.Errorf("write profile %q: %v: %w", id, err, store.ErrUnavailable)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("write profile %q: %v: %w", id, err, store.ErrUnavailable)
	}
	if err := os.Rename(tmpName, s.pathFor(id)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store profile %q: %v: %w", id, err, store.ErrUnavailable)
	}
	log.Debug().
		Str("action", "local_put").
		Str("id", id).
		Str("path", s.pathFor(id)).
		Msg("profile written")
	return nil
}

// Delete removes the record file. A missing file is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	err := os.Remove(s.pathFor(id))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("delete profile %q: %v: %w", id, err, store.ErrUnavailable)
}

func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	if err := store.ValidateID(id); err != nil {
		return false, err
	}
	_, err := os.Stat(s.pathFor(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat profile %q: %v: %w", id, err, store.ErrUnavailable)
}

// List maps filenames under the root back to ids. Only names matching the
// <id>.json convention count, so in-flight temp files are never reported.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list profiles in %q: %v: %w", s.root, err, store.ErrUnavailable)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := store.IDFromKey(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func init() {
	store.Register(store.NameLocal, func(cfg config.Config) (store.Store, error) {
		return New(cfg.LocalRoot)
	})
}
