package store

import (
	"fmt"
	"strings"
)

// ValidationError reports which snapshot rows made a merge impossible.
// The merge aborts atomically when it is returned; nothing is written.
type ValidationError struct {
	// MissingKeyRows holds zero-based indexes of snapshot rows with no key.
	MissingKeyRows []int
	// DuplicateKeys holds keys that appear more than once in the snapshot.
	DuplicateKeys []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingKeyRows) > 0 {
		parts = append(parts, fmt.Sprintf("rows without key: %v", e.MissingKeyRows))
	}
	if len(e.DuplicateKeys) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate keys: %v", e.DuplicateKeys))
	}
	if len(parts) == 0 {
		return "invalid snapshot"
	}
	return "invalid snapshot: " + strings.Join(parts, "; ")
}

// BackupError reports a failure to retain a point-in-time backup before
// overwriting persisted state. The in-memory state is unaffected.
type BackupError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *BackupError) Error() string {
	return fmt.Sprintf("backup %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *BackupError) Unwrap() error {
	return e.Err
}
