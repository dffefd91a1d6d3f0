// Package match selects the best reference record for a free-text
// participant name under configurable acceptance criteria.
package match

import (
	"github.com/nuray/setpoint/internal/domain/normalize"
)

// ReferenceRecord is one entity from a reference pool: a canonical name
// plus arbitrary stat attributes. Immutable for the duration of a
// resolution pass.
type ReferenceRecord struct {
	Name       string            `json:"name"`
	Normalized string            `json:"normalized,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
}

// Attr returns an attribute value, empty when absent.
func (r ReferenceRecord) Attr(name string) string {
	return r.Attrs[name]
}

// Pool is an immutable, stable-order collection of reference records.
// Normalized names are computed once at construction so repeated lookups
// never renormalize; the scan order is the input order, which makes
// exact-tie resolution deterministic (first seen wins).
type Pool struct {
	name    string
	records []ReferenceRecord
	byNorm  map[string]int // normalized name -> first index
}

// NewPool builds a pool from reference rows. Rows with an empty
// Normalized field are normalized from Name.
func NewPool(name string, records ...ReferenceRecord) *Pool {
	rs := make([]ReferenceRecord, len(records))
	copy(rs, records)

	byNorm := make(map[string]int, len(rs))
	for i := range rs {
		if rs[i].Normalized == "" {
			rs[i].Normalized = normalize.Normalize(rs[i].Name)
		}
		if _, seen := byNorm[rs[i].Normalized]; !seen {
			byNorm[rs[i].Normalized] = i
		}
	}

	return &Pool{name: name, records: rs, byNorm: byNorm}
}

// Name returns the pool's name, used in logs and cache keys.
func (p *Pool) Name() string { return p.name }

// Len returns the number of records in the pool.
func (p *Pool) Len() int { return len(p.records) }

// ByNormalized returns the first record whose normalized name equals s.
func (p *Pool) ByNormalized(s string) (ReferenceRecord, bool) {
	if i, ok := p.byNorm[s]; ok {
		return p.records[i], true
	}
	return ReferenceRecord{}, false
}
