// Package model contains domain models passed between layers.
package model

import "sort"

// Record is a persisted unit in the keyed record store. Key is stable
// across snapshots of the same logical event; Attrs is an open
// attribute map validated at the ingestion boundary.
type Record struct {
	Key   string            `json:"key"`
	Attrs map[string]string `json:"attrs"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	attrs := make(map[string]string, len(r.Attrs))
	for k, v := range r.Attrs {
		attrs[k] = v
	}
	return Record{Key: r.Key, Attrs: attrs}
}

// Get returns the attribute value and whether it is present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// Set writes an attribute value, allocating the map if needed.
func (r *Record) Set(name, value string) {
	if r.Attrs == nil {
		r.Attrs = make(map[string]string)
	}
	r.Attrs[name] = value
}

// Delta reports the outcome of one snapshot merge. The three key sets
// are pairwise disjoint and each is sorted for deterministic audit output.
type Delta struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
}

// Sort orders each key set in place.
func (d *Delta) Sort() {
	sort.Strings(d.Added)
	sort.Strings(d.Updated)
	sort.Strings(d.Removed)
}

// Empty reports whether the merge changed nothing and nothing went missing.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}
