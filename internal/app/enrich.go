package service

import (
	"context"
	"time"

	"github.com/nuray/setpoint/internal/adapters/pipeline"
	"github.com/nuray/setpoint/internal/domain/enrich"
	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Summary aggregates the per-record outcomes of one enrichment pass.
type Summary struct {
	Total   int
	Full    int
	Partial int
	None    int
}

// EnrichPass resolves the declared composite fields of every eligible
// record, injects attributes per the rules and classifies each record.
// Records fan out over a worker pool; reference pools are read-only for
// the duration of the pass, and only this goroutine writes the store.
func (s *Service) EnrichPass(ctx context.Context, fields []CompositeField, rules []enrich.Rule) (Summary, error) {
	start := time.Now()
	records := s.upcoming(ctx)

	summary := Summary{Total: len(records)}
	if len(records) == 0 {
		return summary, nil
	}

	queue := pipeline.NewInMemoryQueue(
		pipeline.WithCapacity(len(records)),
		pipeline.WithBufferSize(len(records)),
	)
	pool := pipeline.NewPool(s.workerCount, queue, pipeline.ProcessorFunc(
		func(ctx context.Context, rec model.Record) (model.Record, error) {
			results := make(map[string]match.Result)
			for _, field := range fields {
				composite, _ := rec.Get(field.Attr)
				for slot, res := range s.resolver.ResolveSlots(ctx, composite, field.Slots) {
					results[slot] = res
				}
			}
			s.enricher.Enrich(ctx, &rec, results, rules)
			return rec, nil
		},
	), pipeline.WithPoolLogger(s.logger.Named("pipeline")))

	pool.Start(ctx)
	for _, rec := range records {
		if !queue.Enqueue(ctx, rec) {
			s.logger.Warn(ctx, "record not enqueued for enrichment",
				logger.String("key", rec.Key),
			)
		}
	}
	if err := queue.Close(); err != nil {
		return summary, err
	}

	for res := range pool.Results() {
		if res.Err != nil {
			continue
		}
		s.store.Put(ctx, res.Record)

		switch enrich.Classify(&res.Record, rules) {
		case enrich.OutcomeFull:
			summary.Full++
		case enrich.OutcomePartial:
			summary.Partial++
		case enrich.OutcomeNone:
			summary.None++
		}
	}

	metrics.RecordPassDuration("enrich", float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "enrichment pass finished",
		logger.Int("total", summary.Total),
		logger.Int("full", summary.Full),
		logger.Int("partial", summary.Partial),
		logger.Int("none", summary.None),
	)
	return summary, nil
}
