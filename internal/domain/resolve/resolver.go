// Package resolve splits composite participant fields into slots and
// resolves each slot independently against a registered reference pool.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// DefaultDelimiters are the characters a composite field is split on.
// The first part maps to the first declared slot.
const DefaultDelimiters = "/,&"

// Slot is a named position within a composite participant field, bound
// to the role of the reference pool it resolves against.
type Slot struct {
	Name string
	Role string
}

// Resolver resolves composite fields slot by slot. Slots are
// independent: a failed match in one slot never blocks another, and no
// ordering is guaranteed between them.
type Resolver struct {
	matcher    *match.Matcher
	delimiters string
	pools      map[string]*match.Pool
	cache      Cache
	logger     logger.Logger
}

// Cache memoizes successful slot resolutions across records and passes.
// Only resolved outcomes are cached so that failure reasons stay fresh.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string)
}

// New creates a Resolver around a candidate matcher.
func New(matcher *match.Matcher, opts ...Option) *Resolver {
	r := &Resolver{
		matcher:    matcher,
		delimiters: DefaultDelimiters,
		pools:      make(map[string]*match.Pool),
		logger:     logger.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RegisterPool binds a reference pool to a slot role, replacing any
// previous binding. Pools must stay read-only during a resolution pass.
func (r *Resolver) RegisterPool(role string, pool *match.Pool) {
	r.pools[role] = pool
}

// Split breaks a composite field into trimmed parts, preserving empty
// parts so that part positions keep lining up with declared slots.
func (r *Resolver) Split(composite string) []string {
	var parts []string
	var cur strings.Builder
	for _, c := range composite {
		if strings.ContainsRune(r.delimiters, c) {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(c)
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// ResolveSlots splits the composite field and resolves each declared
// slot against the pool registered for its role. A slot with no
// corresponding part, or whose part normalizes to nothing, is
// deterministically unresolved; a match is never invented.
func (r *Resolver) ResolveSlots(ctx context.Context, composite string, slots []Slot) map[string]match.Result {
	parts := r.Split(composite)
	results := make(map[string]match.Result, len(slots))

	for i, slot := range slots {
		if i >= len(parts) || parts[i] == "" {
			results[slot.Name] = match.Result{Outcome: match.OutcomeDegenerateQuery}
			continue
		}

		pool, ok := r.pools[slot.Role]
		if !ok {
			metrics.RecordMatchUnresolved(match.OutcomeNoCandidate.String())
			r.logger.Warn(ctx, "no pool registered for slot role",
				logger.String("slot", slot.Name),
				logger.String("role", slot.Role),
			)
			results[slot.Name] = match.Result{Outcome: match.OutcomeNoCandidate}
			continue
		}

		results[slot.Name] = r.resolveOne(ctx, parts[i], pool)
	}

	return results
}

// resolveOne resolves a single part, consulting the cache first.
func (r *Resolver) resolveOne(ctx context.Context, part string, pool *match.Pool) match.Result {
	q := match.NewQuery(part)

	key := cacheKey(pool.Name(), q.Normalized)
	if r.cache != nil && q.Normalized != "" {
		if val, ok := r.cache.Get(ctx, key); ok {
			if res, ok := decodeCached(val, pool); ok {
				metrics.RecordCacheHit()
				return res
			}
		}
		metrics.RecordCacheMiss()
	}

	res := r.matcher.MatchQuery(ctx, q, pool)
	if r.cache != nil && res.Resolved() {
		r.cache.Put(ctx, key, encodeCached(res))
	}
	return res
}

func cacheKey(pool, normalized string) string {
	return pool + "\x1f" + normalized
}

func encodeCached(res match.Result) string {
	return fmt.Sprintf("%s\x1f%d", res.Record.Normalized, res.Score)
}

// decodeCached reconstructs a resolved result from the cached normalized
// name, looking the record back up in the pool's index. A cached name
// that no longer exists in the pool (a fresher pool generation) is a
// cache miss.
func decodeCached(val string, pool *match.Pool) (match.Result, bool) {
	idx := strings.LastIndex(val, "\x1f")
	if idx < 0 {
		return match.Result{}, false
	}

	rec, ok := pool.ByNormalized(val[:idx])
	if !ok {
		return match.Result{}, false
	}

	score := 0
	if _, err := fmt.Sscanf(val[idx+1:], "%d", &score); err != nil {
		return match.Result{}, false
	}

	return match.Result{Outcome: match.OutcomeResolved, Record: rec, Score: score}, true
}
