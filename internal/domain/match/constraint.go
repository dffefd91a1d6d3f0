package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/nuray/setpoint/internal/domain/normalize"
)

// Constraint defaults used by the odds-matching flow.
const (
	DefaultMinTokenLen = 3
	DefaultTimeWindow  = 75 * time.Minute

	// TimeAttr is the attribute a reference record carries its start
	// time in, formatted "HH:MM".
	TimeAttr = "event_time"

	clockLayout = "15:04"
)

// Constraint is an acceptance predicate applied after the score
// threshold. It receives the query, the winning candidate and its score,
// and returns nil when satisfied. A high score alone does not guarantee
// acceptance when identity is ambiguous (same surname, different
// tournament), so constraints compose conjunctively with the threshold.
type Constraint func(q Query, cand ReferenceRecord, score int) error

// MinTokenOverlap requires at least minShared tokens of length >=
// minTokenLen to appear in both the query and the candidate name.
func MinTokenOverlap(minShared, minTokenLen int) Constraint {
	return func(q Query, cand ReferenceRecord, _ int) error {
		shared := sharedTokens(q.Normalized, cand.Normalized, minTokenLen)
		if shared < minShared {
			return fmt.Errorf("%w: %d shared tokens, need %d", ErrTokenOverlap, shared, minShared)
		}
		return nil
	}
}

// TimeProximity requires the query time and the candidate's TimeAttr to
// lie within window of each other. A missing or unparseable time on
// either side is treated as maximally distant and always fails.
func TimeProximity(window time.Duration) Constraint {
	return func(q Query, cand ReferenceRecord, _ int) error {
		d, ok := clockDistance(q.Time, cand.Attr(TimeAttr))
		if !ok {
			return fmt.Errorf("%w: missing or unparseable time %q vs %q",
				ErrTimeProximity, q.Time, cand.Attr(TimeAttr))
		}
		if d > window {
			return fmt.Errorf("%w: %s apart, window %s", ErrTimeProximity, d, window)
		}
		return nil
	}
}

// sharedTokens counts tokens of length >= minLen present in both names.
func sharedTokens(a, b string, minLen int) int {
	bTokens := make(map[string]struct{})
	for _, t := range normalize.Tokens(b) {
		bTokens[t] = struct{}{}
	}

	count := 0
	for _, t := range normalize.Tokens(a) {
		if len(t) < minLen {
			continue
		}
		if _, ok := bTokens[t]; ok {
			count++
			delete(bTokens, t)
		}
	}
	return count
}

// clockDistance returns the absolute difference between two "HH:MM"
// times of day. ok is false when either side fails to parse.
func clockDistance(a, b string) (time.Duration, bool) {
	ta, err := time.Parse(clockLayout, strings.TrimSpace(a))
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(clockLayout, strings.TrimSpace(b))
	if err != nil {
		return 0, false
	}

	d := ta.Sub(tb)
	if d < 0 {
		d = -d
	}
	return d, true
}
