package service

import (
	"context"
	"time"

	"github.com/nuray/setpoint/internal/domain/enrich"
	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Discrepancy is one injected value that no longer matches its reference.
type Discrepancy struct {
	Key       string
	Slot      string
	Field     string
	Injected  string
	Reference string
}

// AuditReport summarizes how accurately earlier passes enriched the store.
type AuditReport struct {
	Checked       int
	Matching      int
	Discrepancies []Discrepancy
}

// Accuracy returns the fraction of checked fields that still match, or 1
// when nothing was checked.
func (r AuditReport) Accuracy() float64 {
	if r.Checked == 0 {
		return 1
	}
	return float64(r.Matching) / float64(r.Checked)
}

// Audit re-resolves every enriched field of every eligible record and
// compares the injected values against the current reference pools. It
// never mutates the store; the report names each stale field.
func (s *Service) Audit(ctx context.Context, fields []CompositeField, rules []enrich.Rule) (AuditReport, error) {
	start := time.Now()

	var report AuditReport
	for _, rec := range s.upcoming(ctx) {
		results := make(map[string]match.Result)
		for _, field := range fields {
			composite, _ := rec.Get(field.Attr)
			for slot, res := range s.resolver.ResolveSlots(ctx, composite, field.Slots) {
				results[slot] = res
			}
		}

		for _, rule := range rules {
			injected, ok := rec.Get(rule.Field())
			if !ok || injected == "" {
				continue
			}
			res, ok := results[rule.Slot]
			if !ok || !res.Resolved() {
				continue
			}

			reference := res.Record.Attr(rule.SourceAttr)
			if rule.Numeric {
				reference = enrich.CoerceNumeric(reference)
			}

			report.Checked++
			if injected == reference {
				report.Matching++
				continue
			}
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Key:       rec.Key,
				Slot:      rule.Slot,
				Field:     rule.Field(),
				Injected:  injected,
				Reference: reference,
			})
		}
	}

	metrics.RecordPassDuration("audit", float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "audit pass finished",
		logger.Int("checked", report.Checked),
		logger.Int("matching", report.Matching),
		logger.Int("discrepancies", len(report.Discrepancies)),
		logger.Float64("accuracy", report.Accuracy()),
	)
	return report, nil
}
