package service

import (
	"context"
	"time"

	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// OddsSummary aggregates the outcome of one odds-attachment pass.
type OddsSummary struct {
	Total    int
	Matched  int
	Injected int
	NoOdds   int
}

// AttachOdds matches every eligible record against the fixture pool and
// injects both odds when the fixture carries them. When the pairing
// matched with sides swapped the odds are mirrored so they follow the
// record's own orientation. Fixtures matched without a full set of odds
// are counted separately.
func (s *Service) AttachOdds(ctx context.Context, fixtures *match.FixturePool) (OddsSummary, error) {
	start := time.Now()
	records := s.upcoming(ctx)

	summary := OddsSummary{Total: len(records)}
	for _, rec := range records {
		home, _ := rec.Get(AttrHome)
		away, _ := rec.Get(AttrAway)
		date, _ := rec.Get(AttrDate)
		clock, _ := rec.Get(AttrTime)

		q := match.NewPairQuery(home, away, date, clock)
		res := s.pairMatcher.Match(ctx, q, fixtures)
		if !res.Resolved() {
			continue
		}
		summary.Matched++

		oddsA := res.Fixture.Attr(AttrOddsA)
		oddsB := res.Fixture.Attr(AttrOddsB)
		if res.Swapped {
			oddsA, oddsB = oddsB, oddsA
		}

		if oddsA == "" || oddsB == "" {
			summary.NoOdds++
			metrics.RecordOddsMissing()
			s.logger.Debug(ctx, "fixture matched without odds",
				logger.String("key", rec.Key),
				logger.String("fixture", res.Fixture.Key),
			)
			continue
		}

		rec.Set(AttrOddsA, oddsA)
		rec.Set(AttrOddsB, oddsB)
		s.store.Put(ctx, rec)
		summary.Injected++
		metrics.RecordOddsInjected()
	}

	metrics.RecordPassDuration("odds", float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "odds pass finished",
		logger.Int("total", summary.Total),
		logger.Int("matched", summary.Matched),
		logger.Int("injected", summary.Injected),
		logger.Int("no_odds", summary.NoOdds),
	)
	return summary, nil
}
