// Package service wires the reconciliation and identity-resolution
// components into the batch operations the pipeline runs: snapshot
// reconciliation, enrichment passes, odds attachment, result resolution
// and accuracy audits.
package service

import (
	"context"
	"runtime"
	"time"

	"github.com/nuray/setpoint/internal/adapters/store"
	"github.com/nuray/setpoint/internal/domain/enrich"
	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/internal/domain/resolve"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Record attribute names the service relies on.
const (
	AttrHome   = "home"
	AttrAway   = "away"
	AttrDate   = "date"
	AttrTime   = "time"
	AttrStatus = store.StatusAttr
	AttrScore  = "score"
	AttrWinner = "winner"
	AttrOddsA  = "odds_A"
	AttrOddsB  = "odds_B"
)

// StatusUpcoming is the default status of records eligible for enrichment.
const StatusUpcoming = "upcoming"

// StatusFinished is set on records once a result has been applied.
const StatusFinished = "finished"

// CompositeField binds one record attribute holding a composite
// participant name to the slots its parts resolve into.
type CompositeField struct {
	Attr  string
	Slots []resolve.Slot
}

// Service implements the batch operations of the reconciliation pipeline.
type Service struct {
	store       *store.Store
	matcher     *match.Matcher
	pairMatcher *match.PairMatcher
	resolver    *resolve.Resolver
	enricher    *enrich.Enricher

	// Configuration
	threshold       int
	minShared       int
	minTokenLen     int
	timeWindow      time.Duration
	delimiters      string
	workerCount     int
	backupRetention int
	enrichStatus    string
	cache           resolve.Cache

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithThreshold sets the minimum accepted similarity score.
func WithThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithTokenOverlap sets the shared-token requirement for fixture matching.
func WithTokenOverlap(minShared, minTokenLen int) Option {
	return func(s *Service) {
		if minShared > 0 {
			s.minShared = minShared
		}
		if minTokenLen > 0 {
			s.minTokenLen = minTokenLen
		}
	}
}

// WithTimeWindow sets the start-time proximity window for fixture matching.
func WithTimeWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.timeWindow = window
		}
	}
}

// WithDelimiters sets the characters composite fields are split on.
func WithDelimiters(delimiters string) Option {
	return func(s *Service) {
		if delimiters != "" {
			s.delimiters = delimiters
		}
	}
}

// WithWorkerCount sets the number of enrichment worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithBackupRetention sets how many store backups are kept.
func WithBackupRetention(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.backupRetention = n
		}
	}
}

// WithEnrichStatus sets the record status eligible for enrichment passes.
func WithEnrichStatus(status string) Option {
	return func(s *Service) {
		if status != "" {
			s.enrichStatus = status
		}
	}
}

// WithCache sets a cache consulted before pool scans.
func WithCache(c resolve.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		threshold:       match.DefaultThreshold,
		minShared:       match.DefaultPairSharedTokens,
		minTokenLen:     match.DefaultMinTokenLen,
		timeWindow:      match.DefaultTimeWindow,
		delimiters:      resolve.DefaultDelimiters,
		workerCount:     runtime.NumCPU(),
		backupRetention: store.DefaultBackupRetention,
		enrichStatus:    StatusUpcoming,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.store = store.New(
		store.WithBackupRetention(s.backupRetention),
		store.WithLogger(s.logger.Named("store")),
	)
	s.matcher = match.New(
		match.WithThreshold(s.threshold),
		match.WithLogger(s.logger.Named("match")),
	)
	s.pairMatcher = match.NewPairMatcher(
		match.WithPairThreshold(s.threshold),
		match.WithPairTokenOverlap(s.minShared, s.minTokenLen),
		match.WithPairTimeWindow(s.timeWindow),
		match.WithPairLogger(s.logger.Named("match")),
	)

	resolverOpts := []resolve.Option{
		resolve.WithDelimiters(s.delimiters),
		resolve.WithLogger(s.logger.Named("resolve")),
	}
	if s.cache != nil {
		resolverOpts = append(resolverOpts, resolve.WithCache(s.cache))
	}
	s.resolver = resolve.New(s.matcher, resolverOpts...)

	s.enricher = enrich.New(
		enrich.WithLogger(s.logger.Named("enrich")),
	)

	return s
}

// Store exposes the keyed record store for persistence and inspection.
func (s *Service) Store() *store.Store {
	return s.store
}

// RegisterPool binds a reference pool to a slot role.
func (s *Service) RegisterPool(role string, pool *match.Pool) {
	s.resolver.RegisterPool(role, pool)
}

// Reconcile merges one observed snapshot into the store and reports the
// delta. Validation failures abort the merge untouched.
func (s *Service) Reconcile(ctx context.Context, snapshot []model.Record) (model.Delta, error) {
	start := time.Now()

	delta, err := s.store.Merge(ctx, snapshot)
	metrics.RecordPassDuration("reconcile", float64(time.Since(start).Milliseconds()))
	if err != nil {
		return model.Delta{}, err
	}

	s.logger.Info(ctx, "reconcile pass finished",
		logger.Int("snapshot", len(snapshot)),
		logger.Int("added", len(delta.Added)),
		logger.Int("updated", len(delta.Updated)),
		logger.Int("removed", len(delta.Removed)),
	)
	return delta, nil
}

// Purge drops records in the given terminal statuses from the store and
// returns their keys.
func (s *Service) Purge(ctx context.Context, statuses ...string) []string {
	return s.store.Purge(ctx, statuses...)
}

// upcoming returns the records currently eligible for enrichment.
func (s *Service) upcoming(ctx context.Context) []model.Record {
	var out []model.Record
	for _, rec := range s.store.Snapshot(ctx) {
		if status, _ := rec.Get(AttrStatus); status == s.enrichStatus {
			out = append(out, rec)
		}
	}
	return out
}
