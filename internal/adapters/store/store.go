// Package store is the keyed record store: it merges observed snapshots
// into persistent state while tracking added/updated/removed deltas, and
// persists that state with bounded backup retention.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// DefaultBackupRetention is how many timestamped backups Save keeps.
const DefaultBackupRetention = 3

// StatusAttr is the record attribute consulted by Purge.
const StatusAttr = "status"

// Store is an in-memory keyed record store. It assumes a single writer;
// the mutex exists so snapshot readers never observe a partial merge.
type Store struct {
	mu      sync.RWMutex
	records map[string]model.Record

	backupRetention int
	logger          logger.Logger
}

// New creates an empty store with configuration options.
func New(opts ...Option) *Store {
	s := &Store{
		records:         make(map[string]model.Record),
		backupRetention: DefaultBackupRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// Merge folds one observed snapshot into the store and reports the delta.
//
// Keys absent from the store are added. Keys present in both are merged
// attribute by attribute, last write wins, except that attributes absent
// from the snapshot row keep their stored value and empty snapshot values
// never clear one. Keys present in the store but absent from the snapshot
// are reported as removed yet retained; dropping them is Purge's job.
//
// A snapshot row without a key, or a key occurring twice in the snapshot,
// aborts the whole merge with *ValidationError before anything is written.
func (s *Store) Merge(ctx context.Context, snapshot []model.Record) (model.Delta, error) {
	if verr := validateSnapshot(snapshot); verr != nil {
		metrics.RecordMergeFailure()
		s.logger.Error(ctx, "snapshot validation failed", logger.Error(verr))
		return model.Delta{}, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var delta model.Delta
	seen := make(map[string]struct{}, len(snapshot))

	for _, rec := range snapshot {
		seen[rec.Key] = struct{}{}

		existing, ok := s.records[rec.Key]
		if !ok {
			s.records[rec.Key] = rec.Clone()
			delta.Added = append(delta.Added, rec.Key)
			continue
		}

		changed := false
		for name, value := range rec.Attrs {
			if value == "" {
				continue
			}
			if prev, has := existing.Get(name); !has || prev != value {
				existing.Set(name, value)
				changed = true
			}
		}
		if changed {
			s.records[rec.Key] = existing
			delta.Updated = append(delta.Updated, rec.Key)
		}
	}

	for key := range s.records {
		if _, ok := seen[key]; !ok {
			delta.Removed = append(delta.Removed, key)
		}
	}

	delta.Sort()
	metrics.RecordMerge(len(delta.Added), len(delta.Updated), len(delta.Removed))
	metrics.UpdateStoreRecords(len(s.records))
	s.logger.Info(ctx, "snapshot merged",
		logger.Int("added", len(delta.Added)),
		logger.Int("updated", len(delta.Updated)),
		logger.Int("removed", len(delta.Removed)),
		logger.Int("total", len(s.records)),
	)
	return delta, nil
}

// validateSnapshot checks every row before any of them is applied.
func validateSnapshot(snapshot []model.Record) error {
	var verr ValidationError
	counts := make(map[string]int, len(snapshot))

	for i, rec := range snapshot {
		if rec.Key == "" {
			verr.MissingKeyRows = append(verr.MissingKeyRows, i)
			continue
		}
		counts[rec.Key]++
	}
	for key, n := range counts {
		if n > 1 {
			verr.DuplicateKeys = append(verr.DuplicateKeys, key)
		}
	}
	sort.Strings(verr.DuplicateKeys)

	if len(verr.MissingKeyRows) > 0 || len(verr.DuplicateKeys) > 0 {
		return &verr
	}
	return nil
}

// Get returns a copy of the record for key.
func (s *Store) Get(ctx context.Context, key string) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return model.Record{}, false
	}
	return rec.Clone(), true
}

// Put writes a record back, replacing any stored version.
func (s *Store) Put(ctx context.Context, rec model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.Key] = rec.Clone()
	metrics.UpdateStoreRecords(len(s.records))
}

// Len returns the number of records held.
func (s *Store) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns key-sorted deep copies of every record.
func (s *Store) Snapshot(ctx context.Context) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Purge removes records whose status attribute matches any of the given
// values and returns their sorted keys. It is the explicit counterpart to
// Merge's retain-on-removed behavior.
func (s *Store) Purge(ctx context.Context, statuses ...string) []string {
	if len(statuses) == 0 {
		return nil
	}

	target := make(map[string]struct{}, len(statuses))
	for _, st := range statuses {
		target[st] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []string
	for key, rec := range s.records {
		status, _ := rec.Get(StatusAttr)
		if _, ok := target[status]; ok {
			delete(s.records, key)
			purged = append(purged, key)
		}
	}
	sort.Strings(purged)

	if len(purged) > 0 {
		metrics.UpdateStoreRecords(len(s.records))
		s.logger.Info(ctx, "records purged",
			logger.Int("count", len(purged)),
			logger.Any("statuses", statuses),
		)
	}
	return purged
}
