package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// backupStamp is the timestamp layout embedded in backup file names.
const backupStamp = "20060102_150405"

// Save persists the store as JSON at path. An existing file is first
// copied to a timestamped backup; if that copy fails the original is left
// untouched and a *BackupError is returned. The new state is written to a
// temporary file and renamed into place so readers never see a partial
// file. Backup rotation keeps the most recent retention-count copies.
func (s *Store) Save(ctx context.Context, path string) error {
	data, err := json.MarshalIndent(s.Snapshot(ctx), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if berr := s.backup(ctx, path); berr != nil {
			metrics.RecordBackupError()
			return berr
		}
		s.pruneBackups(ctx, path)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing store: %w", err)
	}

	s.logger.Info(ctx, "store saved",
		logger.String("path", path),
		logger.Int("records", s.Len(ctx)),
	)
	return nil
}

// Load replaces the store contents with the records persisted at path.
func (s *Store) Load(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading store: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decoding store: %w", err)
	}

	s.mu.Lock()
	s.records = make(map[string]model.Record, len(records))
	for _, rec := range records {
		s.records[rec.Key] = rec
	}
	total := len(s.records)
	s.mu.Unlock()

	metrics.UpdateStoreRecords(total)
	s.logger.Info(ctx, "store loaded",
		logger.String("path", path),
		logger.Int("records", total),
	)
	return nil
}

// backup copies the current file at path to a timestamped sibling.
func (s *Store) backup(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &BackupError{Path: path, Err: err}
	}

	bak := backupPath(path, time.Now())
	if err := os.WriteFile(bak, data, 0o644); err != nil {
		return &BackupError{Path: bak, Err: err}
	}

	metrics.RecordBackupCreated()
	s.logger.Debug(ctx, "backup written", logger.String("path", bak))
	return nil
}

// pruneBackups deletes all but the most recent retention-count backups.
// Rotation failures are logged, never propagated.
func (s *Store) pruneBackups(ctx context.Context, path string) {
	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil || len(matches) <= s.backupRetention {
		return
	}

	// backup names sort chronologically, newest last
	sort.Strings(matches)
	stale := matches[:len(matches)-s.backupRetention]

	pruned := 0
	for _, old := range stale {
		if err := os.Remove(old); err != nil {
			s.logger.Warn(ctx, "backup prune failed",
				logger.String("path", old),
				logger.Error(err),
			)
			continue
		}
		pruned++
	}
	if pruned > 0 {
		metrics.RecordBackupsPruned(pruned)
	}
}

// backupPath derives the timestamped backup name for path.
func backupPath(path string, at time.Time) string {
	return fmt.Sprintf("%s.%s.bak", path, at.Format(backupStamp))
}
