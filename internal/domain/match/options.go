package match

import (
	"time"

	"github.com/nuray/setpoint/internal/domain/similarity"
	"github.com/nuray/setpoint/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithScorer sets a custom similarity scorer.
func WithScorer(s similarity.Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithThreshold sets the minimum accepted similarity score.
func WithThreshold(threshold int) Option {
	return func(m *Matcher) {
		if threshold >= similarity.MinScore && threshold <= similarity.MaxScore {
			m.threshold = threshold
		}
	}
}

// WithConstraints appends extra acceptance constraints, applied in order.
func WithConstraints(constraints ...Constraint) Option {
	return func(m *Matcher) {
		m.constraints = append(m.constraints, constraints...)
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// PairOption applies a configuration option to the PairMatcher.
type PairOption func(*PairMatcher)

// WithPairScorer sets a custom similarity scorer.
func WithPairScorer(s similarity.Scorer) PairOption {
	return func(m *PairMatcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithPairThreshold sets the minimum accepted combined score.
func WithPairThreshold(threshold int) PairOption {
	return func(m *PairMatcher) {
		if threshold >= similarity.MinScore && threshold <= similarity.MaxScore {
			m.threshold = threshold
		}
	}
}

// WithPairTokenOverlap sets the shared-token requirement.
func WithPairTokenOverlap(minShared, minTokenLen int) PairOption {
	return func(m *PairMatcher) {
		if minShared >= 0 {
			m.minShared = minShared
		}
		if minTokenLen > 0 {
			m.minTokenLen = minTokenLen
		}
	}
}

// WithPairTimeWindow sets the maximum start-time distance.
func WithPairTimeWindow(window time.Duration) PairOption {
	return func(m *PairMatcher) {
		if window > 0 {
			m.window = window
		}
	}
}

// WithPairLogger sets a custom logger for the pair matcher.
func WithPairLogger(l logger.Logger) PairOption {
	return func(m *PairMatcher) {
		if l != nil {
			m.logger = l
		}
	}
}
