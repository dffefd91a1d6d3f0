package service

import (
	"context"
	"time"

	"github.com/nuray/setpoint/internal/domain/normalize"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Winner side labels carried by result rows.
const (
	SideHome = "home"
	SideAway = "away"
)

// ResultRow is one finished match reported by an external results feed.
type ResultRow struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	Date   string `json:"date"`
	Score  string `json:"score"`
	Winner string `json:"winner"` // SideHome or SideAway
}

// ResultsSummary aggregates the outcome of one result-resolution pass.
type ResultsSummary struct {
	Total   int
	Applied int
}

// ResolveResults applies finished results to eligible records. Rows are
// matched to records by date and lightly normalized name-pair equality,
// straight or swapped; winner sides are mirrored on a swapped match.
// Matched records get their score and winner set and move to finished.
func (s *Service) ResolveResults(ctx context.Context, rows []ResultRow) (ResultsSummary, error) {
	start := time.Now()
	records := s.upcoming(ctx)

	summary := ResultsSummary{Total: len(records)}
	for _, rec := range records {
		home, _ := rec.Get(AttrHome)
		away, _ := rec.Get(AttrAway)
		date, _ := rec.Get(AttrDate)

		recHome := normalize.Light(home)
		recAway := normalize.Light(away)
		if recHome == "" && recAway == "" {
			continue
		}

		for _, row := range rows {
			if row.Date != "" && date != "" && row.Date != date {
				continue
			}

			rowHome := normalize.Light(row.Home)
			rowAway := normalize.Light(row.Away)

			var swapped bool
			switch {
			case rowHome == recHome && rowAway == recAway:
				swapped = false
			case rowHome == recAway && rowAway == recHome:
				swapped = true
			default:
				continue
			}

			winner := row.Winner
			if swapped {
				if winner == SideHome {
					winner = SideAway
				} else if winner == SideAway {
					winner = SideHome
				}
			}

			if row.Score != "" {
				rec.Set(AttrScore, row.Score)
			}
			switch winner {
			case SideHome:
				rec.Set(AttrWinner, home)
			case SideAway:
				rec.Set(AttrWinner, away)
			}
			rec.Set(AttrStatus, StatusFinished)
			s.store.Put(ctx, rec)
			summary.Applied++
			break
		}
	}

	metrics.RecordPassDuration("results", float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "results pass finished",
		logger.Int("total", summary.Total),
		logger.Int("applied", summary.Applied),
	)
	return summary, nil
}
