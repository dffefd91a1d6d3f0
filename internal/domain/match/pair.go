package match

import (
	"context"
	"time"

	"github.com/nuray/setpoint/internal/domain/normalize"
	"github.com/nuray/setpoint/internal/domain/similarity"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// DefaultPairSharedTokens is the shared-token requirement for two-sided
// fixture matching. Two participants make single-surname coincidences
// common, so one shared token is not enough.
const DefaultPairSharedTokens = 2

// Fixture is a two-participant reference row, e.g. one odds-feed event.
type Fixture struct {
	Key            string            `json:"key"`
	Date           string            `json:"date"` // "2006-01-02"
	Time           string            `json:"time"` // "15:04"
	Home           string            `json:"home"`
	Away           string            `json:"away"`
	HomeNormalized string            `json:"home_normalized,omitempty"`
	AwayNormalized string            `json:"away_normalized,omitempty"`
	Attrs          map[string]string `json:"attrs,omitempty"`
}

// Attr returns an attribute value, empty when absent.
func (f Fixture) Attr(name string) string {
	return f.Attrs[name]
}

// FixturePool is an immutable, stable-order collection of fixtures with
// precomputed normalized participant names.
type FixturePool struct {
	name     string
	fixtures []Fixture
}

// NewFixturePool builds a fixture pool, normalizing participant names
// that were not pre-normalized.
func NewFixturePool(name string, fixtures ...Fixture) *FixturePool {
	fs := make([]Fixture, len(fixtures))
	copy(fs, fixtures)
	for i := range fs {
		if fs[i].HomeNormalized == "" {
			fs[i].HomeNormalized = normalize.Normalize(fs[i].Home)
		}
		if fs[i].AwayNormalized == "" {
			fs[i].AwayNormalized = normalize.Normalize(fs[i].Away)
		}
	}
	return &FixturePool{name: name, fixtures: fs}
}

// Name returns the pool's name.
func (p *FixturePool) Name() string { return p.name }

// Len returns the number of fixtures.
func (p *FixturePool) Len() int { return len(p.fixtures) }

// PairQuery is a two-participant lookup with its scheduling context.
type PairQuery struct {
	HomeRaw string
	AwayRaw string
	Home    string // normalized
	Away    string // normalized
	Date    string // "2006-01-02"
	Time    string // "15:04"
}

// NewPairQuery normalizes both participants once.
func NewPairQuery(home, away, date, clock string) PairQuery {
	return PairQuery{
		HomeRaw: home,
		AwayRaw: away,
		Home:    normalize.Normalize(home),
		Away:    normalize.Normalize(away),
		Date:    date,
		Time:    clock,
	}
}

// PairResult is the outcome of one fixture match attempt. Score is the
// best combined score seen, even for rejections. Swapped reports that
// the accepted fixture aligned with the query sides reversed; attribute
// injection must mirror home/away accordingly.
type PairResult struct {
	Outcome Outcome
	Fixture Fixture
	Score   int
	Swapped bool
}

// Resolved reports whether a fixture was accepted.
func (r PairResult) Resolved() bool { return r.Outcome == OutcomeResolved }

// PairMatcher resolves a two-participant record against a fixture pool.
// Candidates are prefiltered by date equality and start-time proximity,
// then scored as the better of the straight and swapped pairings, and
// accepted only when the combined score clears the threshold and enough
// long tokens are shared.
type PairMatcher struct {
	scorer      similarity.Scorer
	threshold   int
	minShared   int
	minTokenLen int
	window      time.Duration
	logger      logger.Logger
}

// NewPairMatcher creates a PairMatcher with default configuration.
func NewPairMatcher(opts ...PairOption) *PairMatcher {
	m := &PairMatcher{
		scorer:      similarity.NewTokenSetScorer(),
		threshold:   DefaultThreshold,
		minShared:   DefaultPairSharedTokens,
		minTokenLen: DefaultMinTokenLen,
		window:      DefaultTimeWindow,
		logger:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Match resolves q against the pool.
func (m *PairMatcher) Match(ctx context.Context, q PairQuery, pool *FixturePool) PairResult {
	metrics.RecordMatchAttempt()

	if q.Home == "" && q.Away == "" {
		metrics.RecordMatchUnresolved(OutcomeDegenerateQuery.String())
		return PairResult{Outcome: OutcomeDegenerateQuery}
	}
	if pool == nil || pool.Len() == 0 {
		metrics.RecordMatchUnresolved(OutcomeNoCandidate.String())
		return PairResult{Outcome: OutcomeNoCandidate}
	}

	var (
		bestScore   = -1 // best accepted
		bestIdx     = -1
		bestSwapped bool
		topScore    = -1 // best seen, for auditing rejections
		topIdx      = -1
		sawNearMiss bool
		candidates  int
	)

	for i := range pool.fixtures {
		f := &pool.fixtures[i]

		if q.Date != "" && f.Date != "" && q.Date != f.Date {
			continue
		}
		if d, ok := clockDistance(q.Time, f.Time); !ok || d > m.window {
			continue
		}
		candidates++

		straight := (m.scorer.Score(q.Home, f.HomeNormalized) + m.scorer.Score(q.Away, f.AwayNormalized)) / 2
		swapped := (m.scorer.Score(q.Home, f.AwayNormalized) + m.scorer.Score(q.Away, f.HomeNormalized)) / 2
		score, isSwapped := straight, false
		if swapped > straight {
			score, isSwapped = swapped, true
		}

		if score > topScore {
			topScore, topIdx = score, i
		}
		if score < m.threshold || score <= bestScore {
			continue
		}

		if m.sharedPairTokens(q, f) < m.minShared {
			sawNearMiss = true
			continue
		}

		bestScore, bestIdx, bestSwapped = score, i, isSwapped
	}

	if candidates == 0 {
		metrics.RecordMatchUnresolved(OutcomeNoCandidate.String())
		return PairResult{Outcome: OutcomeNoCandidate}
	}
	metrics.RecordMatchScore(topScore)

	if bestIdx >= 0 {
		metrics.RecordMatchResolved()
		f := pool.fixtures[bestIdx]
		m.logger.Debug(ctx, "fixture resolved",
			logger.String("query_home", q.HomeRaw),
			logger.String("query_away", q.AwayRaw),
			logger.String("fixture_home", f.Home),
			logger.String("fixture_away", f.Away),
			logger.Int("score", bestScore),
		)
		return PairResult{Outcome: OutcomeResolved, Fixture: f, Score: bestScore, Swapped: bestSwapped}
	}

	if sawNearMiss {
		metrics.RecordMatchNearMiss()
		metrics.RecordMatchUnresolved(OutcomeConstraintFailed.String())
		f := pool.fixtures[topIdx]
		m.logger.Warn(ctx, "near miss: fixture cleared threshold but shared too few tokens",
			logger.String("query_home", q.HomeRaw),
			logger.String("query_away", q.AwayRaw),
			logger.String("fixture_home", f.Home),
			logger.String("fixture_away", f.Away),
			logger.Int("score", topScore),
		)
		return PairResult{Outcome: OutcomeConstraintFailed, Fixture: f, Score: topScore}
	}

	metrics.RecordMatchUnresolved(OutcomeBelowThreshold.String())
	return PairResult{Outcome: OutcomeBelowThreshold, Fixture: pool.fixtures[topIdx], Score: topScore}
}

// sharedPairTokens counts long tokens the combined query shares with the
// combined fixture participants.
func (m *PairMatcher) sharedPairTokens(q PairQuery, f *Fixture) int {
	combined := q.Home + " " + q.Away
	return sharedTokens(combined, f.HomeNormalized+" "+f.AwayNormalized, m.minTokenLen)
}
