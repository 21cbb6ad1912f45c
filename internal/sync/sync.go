// Package sync copies a source backend's record set into a destination
// backend, one id at a time, and reports the per-record outcome. Runs are
// one-shot and independent: no state survives between invocations.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/company-profile-store/internal/store"
	"github.com/Chapsvision-dev/company-profile-store/internal/util"
)

// Outcome classifies one id's migration result.
type Outcome string

const (
	// OutcomeCopied: the record was written to the destination.
	OutcomeCopied Outcome = "copied"
	// OutcomeSkipped: the destination already held the id; nothing was
	// overwritten.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed: fetching or writing this id failed; the run continued.
	OutcomeFailed Outcome = "failed"
)

// Entry is the outcome for a single id.
type Entry struct {
	ID      string
	Outcome Outcome
	Err     error
}

// Report aggregates one migration run. It is always complete: every id from
// the source snapshot has exactly one entry, whatever the failure count.
type Report struct {
	RunID   string
	Source  string
	Dest    string
	Started time.Time
	Elapsed time.Duration

	Entries []Entry
	Copied  int
	Skipped int
	Failed  int
}

// Run migrates src's record set into dst.
//
// The source listing taken up front defines the candidate set; ids appearing
// in the source afterwards are not picked up. Existing destination records
// are never overwritten. Per-id failures become report entries and do not
// abort the run; only a failed source listing does (there is nothing to
// report yet).
func Run(ctx context.Context, src, dst store.Store) (Report, error) {
	rep := Report{
		RunID:   uuid.NewString(),
		Source:  src.Name(),
		Dest:    dst.Name(),
		Started: time.Now().UTC(),
	}

	ids, err := src.List(ctx)
	if err != nil {
		return rep, err
	}
	log.Info().
		Str("action", "sync_start").
		Str("run_id", rep.RunID).
		Str("source", rep.Source).
		Str("dest", rep.Dest).
		Int("candidates", len(ids)).
		Msg("migration starting")

	for _, id := range ids {
		rep.add(migrateOne(ctx, src, dst, id, rep.RunID))
	}

	rep.Elapsed = time.Since(rep.Started)
	log.Info().
		Str("action", "sync_done").
		Str("run_id", rep.RunID).
		Int("copied", rep.Copied).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Dur("elapsed_ms", rep.Elapsed).
		Msg("migration finished")
	return rep, nil
}

func migrateOne(ctx context.Context, src, dst store.Store, id, runID string) Entry {
	ok, err := dst.Exists(ctx, id)
	if err != nil {
		log.Warn().Err(err).
			Str("action", "sync_exists").
			Str("run_id", runID).
			Str("id", id).
			Msg("destination check failed")
		return Entry{ID: id, Outcome: OutcomeFailed, Err: err}
	}

	rec, err := src.Get(ctx, id)
	if err != nil {
		log.Warn().Err(err).
			Str("action", "sync_fetch").
			Str("run_id", runID).
			Str("id", id).
			Msg("source fetch failed")
		return Entry{ID: id, Outcome: OutcomeFailed, Err: err}
	}

	if ok {
		// Non-destructive by contract: note drift but leave the
		// destination record alone.
		if existing, err := dst.Get(ctx, id); err == nil && !existing.Equal(rec) {
			log.Warn().
				Str("action", "sync_skip").
				Str("run_id", runID).
				Str("id", id).
				Str("source_sha256", util.SHA256Bytes(rec.Encode())).
				Str("dest_sha256", util.SHA256Bytes(existing.Encode())).
				Msg("destination differs from source; keeping destination")
		} else {
			log.Debug().
				Str("action", "sync_skip").
				Str("run_id", runID).
				Str("id", id).
				Msg("already present in destination")
		}
		return Entry{ID: id, Outcome: OutcomeSkipped}
	}

	if err := dst.Put(ctx, id, rec); err != nil {
		log.Warn().Err(err).
			Str("action", "sync_copy").
			Str("run_id", runID).
			Str("id", id).
			Msg("destination write failed")
		return Entry{ID: id, Outcome: OutcomeFailed, Err: err}
	}
	log.Debug().
		Str("action", "sync_copy").
		Str("run_id", runID).
		Str("id", id).
		Str("sha256", util.SHA256Bytes(rec.Encode())).
		Msg("record copied")
	return Entry{ID: id, Outcome: OutcomeCopied}
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
	switch e.Outcome {
	case OutcomeCopied:
		r.Copied++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
