// Package similarity defines the contract for scoring how alike two
// normalized names are.
package similarity

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Scorer computes a bounded similarity score between two normalized
// strings. Implementations return a value in [MinScore, MaxScore] and must
// never fail: an empty input on either side scores MinScore.
type Scorer interface {
	Score(a, b string) int
}

// TokenSetScorer scores names with the partial token-set ratio: tokens
// shared by both names are factored out and the remainders are compared
// with a best-alignment substring match. The measure is robust to word
// reordering ("dolgopolov oleksandr" vs "oleksandr dolgopolov"), missing
// middle names, and one side being an abbreviation of the other
// ("j. dolhopolov" vs "dolgopolov oleksandr").
type TokenSetScorer struct{}

// NewTokenSetScorer creates the default scorer.
func NewTokenSetScorer() *TokenSetScorer {
	return &TokenSetScorer{}
}

// Score returns the partial token-set ratio of a and b in [0,100].
func (s *TokenSetScorer) Score(a, b string) int {
	if a == "" || b == "" {
		return MinScore
	}
	return fuzzy.PartialTokenSetRatio(a, b)
}
