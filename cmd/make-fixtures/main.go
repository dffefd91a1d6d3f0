package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nuray/setpoint/internal/fixtures"
)

// Default generation constants.
const (
	defaultMatches        = 16
	defaultDate           = "2026-01-01"
	defaultOddsCoverage   = 0.8
	defaultResultCoverage = 0.5
	defaultOutputDir      = "testdata"
)

func main() {
	var (
		matches        = flag.Int("matches", defaultMatches, "Number of upcoming matches to generate")
		date           = flag.String("date", defaultDate, "Match date in YYYY-MM-DD form")
		oddsCoverage   = flag.Float64("odds", defaultOddsCoverage, "Fraction of matches with a bookmaker fixture")
		resultCoverage = flag.Float64("results", defaultResultCoverage, "Fraction of matches with a final result")
		outputDir      = flag.String("out", defaultOutputDir, "Directory for the generated JSON files")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	out := fixtures.Generate(fixtures.Config{
		Matches:        *matches,
		Date:           *date,
		OddsCoverage:   *oddsCoverage,
		ResultCoverage: *resultCoverage,
	})

	if err := out.WriteFiles(*outputDir); err != nil {
		os.Stderr.WriteString("Failed to write fixtures: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("Wrote %d matches, %d pool entries, %d fixtures, %d results to %s\n",
		len(out.Snapshot), len(out.Pools["standings"]), len(out.Fixtures), len(out.Results), *outputDir)
}
