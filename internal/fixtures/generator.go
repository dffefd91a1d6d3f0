package fixtures

import (
	"crypto/md5" //nolint:gosec // key derivation, not cryptography
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	service "github.com/nuray/setpoint/internal/app"
	"github.com/nuray/setpoint/internal/domain/match"
	"github.com/nuray/setpoint/internal/domain/model"
)

// Config controls how much synthetic data Generate produces.
type Config struct {
	// Matches is the number of snapshot records.
	Matches int

	// Date is the "2006-01-02" day every match is scheduled on.
	Date string

	// OddsCoverage is the fraction of matches that get a fixture (0-1).
	OddsCoverage float64

	// ResultCoverage is the fraction of matches that get a result (0-1).
	ResultCoverage float64
}

// Output is one generated data set.
type Output struct {
	Snapshot []model.Record                     `json:"snapshot"`
	Pools    map[string][]match.ReferenceRecord `json:"pools"`
	Fixtures []match.Fixture                    `json:"fixtures"`
	Results  []service.ResultRow                `json:"results"`
}

var givenNames = []string{
	"Jannik", "Carlos", "Alexander", "Holger", "Daniil", "Andrey",
	"Casper", "Taylor", "Hubert", "Félix", "Gaël", "Stefanos",
	"Karen", "Frances", "Sebastián", "Lorenzo", "Grigor", "Tommy",
	"Ugo", "Alejandro", "Jiří", "Arthur", "Flavio", "Jakub",
}

var surnames = []string{
	"Sinner", "Alcaraz", "Zverev", "Rune", "Medvedev", "Rublev",
	"Ruud", "Fritz", "Hurkacz", "Auger-Aliassime", "Monfils", "Tsitsipas",
	"Khachanov", "Tiafoe", "Báez", "Musetti", "Dimitrov", "Paul",
	"Humbert", "Davidovich Fokina", "Lehečka", "Fils", "Cobolli", "Menšík",
}

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randomFloat returns a uniform float64 in [0, 1).
func randomFloat() float64 {
	const divisor = 1_000_000
	v, _ := rand.Int(rand.Reader, big.NewInt(divisor))
	return float64(v.Int64()) / divisor
}

// MatchKey derives a stable record key from the participants and date.
func MatchKey(home, away, date string) string {
	if home == "" && away == "" {
		return uuid.New().String()
	}
	sum := md5.Sum([]byte(home + "|" + away + "|" + date)) //nolint:gosec // key derivation, not cryptography
	return fmt.Sprintf("%x", sum)
}

// initialed renders a name the way odds feeds abbreviate it: "J. Sinner".
func initialed(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	return string([]rune(parts[0])[0]) + ". " + strings.Join(parts[1:], " ")
}

// Generate produces a self-consistent synthetic data set: a standings
// pool covering every player, a snapshot of upcoming matches, fixtures
// for a subset of them (some with sides swapped and names abbreviated,
// exercising the fuzzy pairing) and results for another subset.
func Generate(cfg Config) *Output {
	if cfg.Matches <= 0 {
		cfg.Matches = 16
	}
	if cfg.Date == "" {
		cfg.Date = "2026-01-01"
	}

	players := make([]string, 0, len(surnames))
	standings := make([]match.ReferenceRecord, 0, len(surnames))
	for i, surname := range surnames {
		given := givenNames[i%len(givenNames)]
		players = append(players, given+" "+surname)
		// reference pools list surname first, the way rankings pages do
		standings = append(standings, match.ReferenceRecord{
			Name: surname + " " + given,
			Attrs: map[string]string{
				"rank":   fmt.Sprintf("%d", i+1),
				"points": fmt.Sprintf("%d", 11000-i*420),
			},
		})
	}

	out := &Output{
		Pools: map[string][]match.ReferenceRecord{
			"standings": standings,
		},
	}

	for i := 0; i < cfg.Matches; i++ {
		// rotate the pairing each time the player list wraps so no two
		// matches repeat a pair, which would collide on key
		round := (2 * i) / len(players)
		homeIdx := (2 * i) % len(players)
		awayIdx := (2*i + 1 + round) % len(players)
		if awayIdx == homeIdx {
			awayIdx = (awayIdx + 1) % len(players)
		}
		home := players[homeIdx]
		away := players[awayIdx]
		clock := fmt.Sprintf("%02d:%02d", 10+randomInt(10), 15*randomInt(4))

		rec := model.Record{
			Key: MatchKey(home, away, cfg.Date),
			Attrs: map[string]string{
				service.AttrHome:   home,
				service.AttrAway:   away,
				service.AttrDate:   cfg.Date,
				service.AttrTime:   clock,
				service.AttrStatus: service.StatusUpcoming,
			},
		}
		out.Snapshot = append(out.Snapshot, rec)

		if randomFloat() < cfg.OddsCoverage {
			oddsHome := 1.2 + 2.5*randomFloat()
			oddsAway := 1.2 + 2.5*randomFloat()

			fixture := match.Fixture{
				Key:  "f-" + uuid.New().String(),
				Date: cfg.Date,
				Time: clock,
				Home: initialed(home),
				Away: initialed(away),
				Attrs: map[string]string{
					service.AttrOddsA: fmt.Sprintf("%.2f", oddsHome),
					service.AttrOddsB: fmt.Sprintf("%.2f", oddsAway),
				},
			}
			if randomInt(2) == 1 {
				fixture.Home, fixture.Away = fixture.Away, fixture.Home
				fixture.Attrs[service.AttrOddsA], fixture.Attrs[service.AttrOddsB] =
					fixture.Attrs[service.AttrOddsB], fixture.Attrs[service.AttrOddsA]
			}
			out.Fixtures = append(out.Fixtures, fixture)
		}

		if randomFloat() < cfg.ResultCoverage {
			winner := service.SideHome
			if randomInt(2) == 1 {
				winner = service.SideAway
			}
			out.Results = append(out.Results, service.ResultRow{
				Home:   home,
				Away:   away,
				Date:   cfg.Date,
				Score:  fmt.Sprintf("6:%d, %d:6, 7:%d", randomInt(5), randomInt(5), 5+randomInt(2)),
				Winner: winner,
			})
		}
	}

	return out
}
