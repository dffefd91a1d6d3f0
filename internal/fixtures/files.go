// Package fixtures generates and loads the JSON inputs the pipeline
// consumes: observed snapshots, reference pools, odds fixtures and
// results feeds.
package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	service "github.com/nuray/setpoint/internal/app"
	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/internal/domain/model"
)

// Default file names inside a fixture directory.
const (
	SnapshotFile = "snapshot.json"
	PoolsFile    = "pools.json"
	FixturesFile = "fixtures.json"
	ResultsFile  = "results.json"
)

// LoadSnapshot reads an observed snapshot.
func LoadSnapshot(path string) ([]model.Record, error) {
	var records []model.Record
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadPools reads reference pools keyed by role.
func LoadPools(path string) (map[string]*match.Pool, error) {
	var raw map[string][]match.ReferenceRecord
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	pools := make(map[string]*match.Pool, len(raw))
	for role, records := range raw {
		pools[role] = match.NewPool(role, records...)
	}
	return pools, nil
}

// LoadFixtures reads an odds fixture pool.
func LoadFixtures(path string) (*match.FixturePool, error) {
	var raw []match.Fixture
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	return match.NewFixturePool("odds", raw...), nil
}

// LoadResults reads a results feed.
func LoadResults(path string) ([]service.ResultRow, error) {
	var rows []service.ResultRow
	if err := readJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteFiles persists a generated data set under dir.
func (o *Output) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, SnapshotFile), o.Snapshot); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, PoolsFile), o.Pools); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, FixturesFile), o.Fixtures); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ResultsFile), o.Results)
}
