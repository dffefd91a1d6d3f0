// Package enrich copies attributes from resolved reference records onto
// target records and classifies how complete each record ended up.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Outcome classifies how completely a record was enriched.
type Outcome int

const (
	// OutcomeNone means no slot contributed any field.
	OutcomeNone Outcome = iota
	// OutcomePartial means some slots contributed but required fields are missing.
	OutcomePartial
	// OutcomeFull means every required field is populated.
	OutcomeFull
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeFull:
		return "full"
	case OutcomePartial:
		return "partial"
	case OutcomeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Rule declares one attribute to copy from a resolved slot onto the record.
// The injected field name is TargetField suffixed with the slot name,
// e.g. TargetField "rank" and Slot "A1" produce "rank_A1".
type Rule struct {
	Slot        string
	SourceAttr  string
	TargetField string
	Numeric     bool
	Required    bool
}

// Field returns the slot-qualified field name the rule writes.
func (r Rule) Field() string {
	return r.TargetField + "_" + r.Slot
}

// Enricher applies rules to records using per-slot resolution results.
type Enricher struct {
	logger logger.Logger
}

// New creates an enricher with configuration options.
func New(opts ...Option) *Enricher {
	e := &Enricher{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}
	return e
}

// Enrich copies attributes from resolved slots onto rec per the rules and
// returns the resulting completeness. Numeric attributes are coerced
// leniently; unparseable values leave the field empty rather than failing.
// Re-running on an already enriched record with the same inputs yields the
// same outcome.
func (e *Enricher) Enrich(ctx context.Context, rec *model.Record, slotResults map[string]match.Result, rules []Rule) Outcome {
	for _, rule := range rules {
		res, ok := slotResults[rule.Slot]
		if !ok || !res.Resolved() {
			continue
		}

		value := res.Record.Attr(rule.SourceAttr)
		if rule.Numeric {
			value = CoerceNumeric(value)
		}
		if value == "" {
			continue
		}

		rec.Set(rule.Field(), value)
		metrics.RecordFieldInjected()
	}

	outcome := Classify(rec, rules)
	metrics.RecordEnrichmentOutcome(outcome.String())
	if outcome != OutcomeFull {
		e.logger.Debug(ctx, "record enrichment incomplete",
			logger.String("key", rec.Key),
			logger.String("outcome", outcome.String()),
		)
	}
	return outcome
}

// Classify recomputes the enrichment outcome purely from record state.
// A slot counts as contributing when any of its declared fields is
// populated. Full requires every required field to be populated, None means
// no slot contributed anything.
func Classify(rec *model.Record, rules []Rule) Outcome {
	if len(rules) == 0 {
		return OutcomeNone
	}

	slotPopulated := make(map[string]bool)
	requiredMissing := false

	for _, rule := range rules {
		v, _ := rec.Get(rule.Field())
		populated := v != ""
		if populated {
			slotPopulated[rule.Slot] = true
		}
		if rule.Required && !populated {
			requiredMissing = true
		}
	}

	if len(slotPopulated) == 0 {
		return OutcomeNone
	}
	if requiredMissing {
		return OutcomePartial
	}
	return OutcomeFull
}

// CoerceNumeric leniently parses a numeric attribute. Comma decimal
// separators are accepted and rewritten, whitespace is trimmed, and
// anything that still does not parse becomes the empty string.
func CoerceNumeric(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, ",", ".")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return ""
	}
	return s
}
