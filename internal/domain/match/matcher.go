package match

import (
	"context"

	"github.com/nuray/setpoint/internal/domain/normalize"
	"github.com/nuray/setpoint/internal/domain/similarity"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// DefaultThreshold is the minimum accepted similarity score.
const DefaultThreshold = 85

// Outcome classifies the result of one match attempt.
type Outcome int

const (
	// OutcomeNoCandidate means the pool was empty or missing. It is the
	// zero value so an unpopulated Result never reads as resolved.
	OutcomeNoCandidate Outcome = iota
	// OutcomeResolved means a candidate cleared the threshold and every
	// configured constraint.
	OutcomeResolved
	// OutcomeBelowThreshold means the best candidate scored under the
	// acceptance threshold.
	OutcomeBelowThreshold
	// OutcomeConstraintFailed means the best candidate cleared the
	// threshold but failed an extra constraint (a near miss).
	OutcomeConstraintFailed
	// OutcomeDegenerateQuery means the query normalized to the empty
	// string; it can never match anything.
	OutcomeDegenerateQuery
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNoCandidate:
		return "no_candidate"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeConstraintFailed:
		return "constraint_failed"
	case OutcomeDegenerateQuery:
		return "degenerate_query"
	default:
		return "unknown"
	}
}

// Query carries one lookup: the raw name, its normalized form, and
// optional context consumed by constraints.
type Query struct {
	Raw        string
	Normalized string

	// Time is an optional "HH:MM" time-of-day used by the temporal
	// proximity constraint.
	Time string
}

// NewQuery normalizes raw once and wraps it for matching.
func NewQuery(raw string) Query {
	return Query{Raw: raw, Normalized: normalize.Normalize(raw)}
}

// Result is the outcome of one resolution attempt. Record and Score are
// populated whenever a best candidate existed, including rejections, so
// callers can audit near misses.
type Result struct {
	Outcome Outcome
	Record  ReferenceRecord
	Score   int
	// Reason holds the constraint error for OutcomeConstraintFailed.
	Reason error
}

// Resolved reports whether the query was accepted.
func (r Result) Resolved() bool { return r.Outcome == OutcomeResolved }

// Matcher picks at most one reference record per query. Safe for
// concurrent use across distinct queries as long as pools are treated as
// read-only during a pass.
type Matcher struct {
	scorer      similarity.Scorer
	threshold   int
	constraints []Constraint
	logger      logger.Logger
}

// New creates a Matcher with default configuration.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		scorer:    similarity.NewTokenSetScorer(),
		threshold: DefaultThreshold,
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() int { return m.threshold }

// Match normalizes raw once and resolves it against the pool.
func (m *Matcher) Match(ctx context.Context, raw string, pool *Pool) Result {
	return m.MatchQuery(ctx, NewQuery(raw), pool)
}

// MatchQuery resolves a prepared query against the pool: every record is
// scored, the best one wins (first seen wins exact ties), and the winner
// is accepted only if its score reaches the threshold and every
// constraint holds. O(pool) per call.
func (m *Matcher) MatchQuery(ctx context.Context, q Query, pool *Pool) Result {
	metrics.RecordMatchAttempt()

	if q.Normalized == "" {
		metrics.RecordMatchUnresolved(OutcomeDegenerateQuery.String())
		return Result{Outcome: OutcomeDegenerateQuery}
	}
	if pool == nil || pool.Len() == 0 {
		metrics.RecordMatchUnresolved(OutcomeNoCandidate.String())
		return Result{Outcome: OutcomeNoCandidate}
	}

	best, bestIdx := -1, -1
	for i := range pool.records {
		// Strictly greater keeps the first-seen candidate on exact ties.
		if s := m.scorer.Score(q.Normalized, pool.records[i].Normalized); s > best {
			best, bestIdx = s, i
		}
	}
	metrics.RecordMatchScore(best)

	cand := pool.records[bestIdx]
	if best < m.threshold {
		metrics.RecordMatchUnresolved(OutcomeBelowThreshold.String())
		return Result{Outcome: OutcomeBelowThreshold, Record: cand, Score: best}
	}

	for _, constraint := range m.constraints {
		if err := constraint(q, cand, best); err != nil {
			metrics.RecordMatchNearMiss()
			metrics.RecordMatchUnresolved(OutcomeConstraintFailed.String())
			m.logger.Warn(ctx, "near miss: candidate cleared threshold but failed constraint",
				logger.String("query", q.Raw),
				logger.String("candidate", cand.Name),
				logger.String("pool", pool.Name()),
				logger.Int("score", best),
				logger.Error(err),
			)
			return Result{Outcome: OutcomeConstraintFailed, Record: cand, Score: best, Reason: err}
		}
	}

	metrics.RecordMatchResolved()
	m.logger.Debug(ctx, "query resolved",
		logger.String("query", q.Raw),
		logger.String("candidate", cand.Name),
		logger.String("pool", pool.Name()),
		logger.Int("score", best),
	)
	return Result{Outcome: OutcomeResolved, Record: cand, Score: best}
}
