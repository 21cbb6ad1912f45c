// Package store defines the contract shared by all profile storage backends
// and the machinery to pick one: error taxonomy, id validation, the id↔key
// mapping, a factory registry, and the environment-driven selector.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
)

// Failure taxonomy. Every backend error wraps exactly one of these so callers
// can branch with errors.Is regardless of which backend is bound.
var (
	// ErrInvalidID: the id is malformed and was never sent to the medium.
	ErrInvalidID = errors.New("invalid profile id")
	// ErrNotFound: no record stored under the id.
	ErrNotFound = errors.New("profile not found")
	// ErrCorruptData: stored bytes do not decode as a record.
	ErrCorruptData = errors.New("stored profile data is corrupt")
	// ErrUnavailable: I/O, network or timeout failure reaching the medium.
	ErrUnavailable = errors.New("storage backend unavailable")
	// ErrAccessDenied: authorization failure (remote backends only).
	ErrAccessDenied = errors.New("storage backend access denied")
)

// Store is the contract every backend implements. Semantics are identical
// across backends:
//
//   - Get fails with ErrNotFound, ErrCorruptData or ErrUnavailable.
//   - Put replaces the full record atomically; a concurrent Get observes
//     either the old or the new content, never a partial write. On failure
//     the prior value stays intact.
//   - Delete is idempotent; a missing id is not an error.
//   - Exists never fails for a well-formed absent id.
//   - List returns the ids currently resolvable via Get, unordered; each
//     call re-enumerates from current state.
//
// All operations reject malformed ids with ErrInvalidID before touching the
// medium. No backend retries internally; failures propagate unchanged.
type Store interface {
	Get(ctx context.Context, id string) (profile.Record, error)
	Put(ctx context.Context, id string, rec profile.Record) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]string, error)

	// Name returns the backend identifier (e.g. "local", "azure").
	Name() string
}

const keySuffix = ".json"

// ValidateID rejects ids that are unsafe as a filename or object key:
// empty, path separators, control characters, "." and "..".
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains a control character", ErrInvalidID, id)
		}
	}
	return nil
}

// KeyFor maps an id to its storage name. The same mapping addresses both the
// local file and the remote blob, so a record's key survives migration.
func KeyFor(id string) string { return id + keySuffix }

// IDFromKey inverts KeyFor. Names outside the convention (temp files, foreign
// objects) report ok=false and are skipped by List.
func IDFromKey(key string) (id string, ok bool) {
	id, ok = strings.CutSuffix(key, keySuffix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
