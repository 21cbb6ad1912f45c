package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
	"github.com/Chapsvision-dev/company-profile-store/internal/store"
)

// memStore is an in-memory backend with injectable per-id write failures.
type memStore struct {
	name    string
	records map[string][]byte
	failPut map[string]bool
}

var _ store.Store = (*memStore)(nil)

func newMemStore(name string) *memStore {
	return &memStore{
		name:    name,
		records: map[string][]byte{},
		failPut: map[string]bool{},
	}
}

func (m *memStore) Name() string { return m.name }

func (m *memStore) Get(_ context.Context, id string) (profile.Record, error) {
	data, ok := m.records[id]
	if !ok {
		return profile.Record{}, fmt.Errorf("profile %q: %w", id, store.ErrNotFound)
	}
	rec, err := profile.Decode(data)
	if err != nil {
		return profile.Record{}, fmt.Errorf("profile %q: %w", id, store.ErrCorruptData)
	}
	return rec, nil
}

func (m *memStore) Put(_ context.Context, id string, rec profile.Record) error {
	if m.failPut[id] {
		return fmt.Errorf("profile %q: injected: %w", id, store.ErrUnavailable)
	}
	m.records[id] = rec.Encode()
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.records[id]
	return ok, nil
}

func (m *memStore) List(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) put(t *testing.T, id, doc string) {
	t.Helper()
	rec, err := profile.Decode([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, m.Put(context.Background(), id, rec))
}

func outcomes(rep Report) map[string]Outcome {
	out := make(map[string]Outcome, len(rep.Entries))
	for _, e := range rep.Entries {
		out[e.ID] = e.Outcome
	}
	return out
}

func TestRunCopiesAllRecords(t *testing.T) {
	src := newMemStore("local")
	dst := newMemStore("azure")
	src.put(t, "acme", `{"id":"acme","name":"Acme"}`)
	src.put(t, "globex", `{"id":"globex","name":"Globex"}`)

	rep, err := Run(context.Background(), src, dst)
	require.NoError(t, err)

	require.Equal(t, 2, rep.Copied)
	require.Zero(t, rep.Skipped)
	require.Zero(t, rep.Failed)
	require.NotEmpty(t, rep.RunID)
	require.Equal(t, "local", rep.Source)
	require.Equal(t, "azure", rep.Dest)

	// Destination holds byte-identical copies.
	for id, want := range src.records {
		require.Equal(t, want, dst.records[id])
	}
}

// Pre-existing destination records are never overwritten, even when the
// source content differs.
func TestRunIsNonDestructive(t *testing.T) {
	src := newMemStore("local")
	dst := newMemStore("azure")
	src.put(t, "acme", `{"id":"acme","rev":"source"}`)
	dst.put(t, "acme", `{"id":"acme","rev":"destination"}`)

	rep, err := Run(context.Background(), src, dst)
	require.NoError(t, err)

	require.Equal(t, 1, rep.Skipped)
	require.Zero(t, rep.Copied)
	require.Zero(t, rep.Failed)
	require.Equal(t, []byte(`{"id":"acme","rev":"destination"}`), dst.records["acme"])
}

// One failing id must not abort the run: every candidate gets an entry and
// the healthy records land in the destination.
func TestRunContinuesPastFailures(t *testing.T) {
	src := newMemStore("local")
	dst := newMemStore("azure")
	src.put(t, "a", `{"id":"a"}`)
	src.put(t, "b", `{"id":"b"}`)
	src.put(t, "c", `{"id":"c"}`)
	dst.failPut["b"] = true

	rep, err := Run(context.Background(), src, dst)
	require.NoError(t, err)

	require.Len(t, rep.Entries, 3)
	require.Equal(t, 2, rep.Copied)
	require.Equal(t, 1, rep.Failed)
	require.Zero(t, rep.Skipped)

	got := outcomes(rep)
	require.Equal(t, OutcomeFailed, got["b"])
	require.Equal(t, OutcomeCopied, got["a"])
	require.Equal(t, OutcomeCopied, got["c"])

	require.Contains(t, dst.records, "a")
	require.Contains(t, dst.records, "c")
	require.NotContains(t, dst.records, "b")

	for _, e := range rep.Entries {
		if e.ID == "b" {
			require.ErrorIs(t, e.Err, store.ErrUnavailable)
		}
	}
}

func TestRunEmptySource(t *testing.T) {
	rep, err := Run(context.Background(), newMemStore("local"), newMemStore("azure"))
	require.NoError(t, err)
	require.Empty(t, rep.Entries)
	require.Zero(t, rep.Copied+rep.Skipped+rep.Failed)
}

// Listing failures abort the run: no candidate set means nothing to report.
func TestRunAbortsWhenListingFails(t *testing.T) {
	src := &listFailStore{memStore: newMemStore("local")}
	_, err := Run(context.Background(), src, newMemStore("azure"))
	require.ErrorIs(t, err, store.ErrUnavailable)
}

type listFailStore struct{ *memStore }

func (s *listFailStore) List(_ context.Context) ([]string, error) {
	return nil, fmt.Errorf("injected: %w", store.ErrUnavailable)
}
