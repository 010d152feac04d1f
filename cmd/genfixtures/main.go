// Command genfixtures writes synthetic station exports in the published
// layout for local runs and load tests. Stations alternate between the
// core-only and the core+extended schema, and preamble lengths vary so the
// header locator is exercised.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/generated -stations 6 -hours 720
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/fixtures"
)

var stationNames = []string{
	"VALENTIA OBSERVATORY", "MALIN HEAD", "BELMULLET", "DUBLIN AIRPORT",
	"SHANNON AIRPORT", "CORK AIRPORT", "JOHNSTOWN CASTLE", "CLAREMORRIS",
	"MULLINGAR", "ATHENRY", "SHERKIN ISLAND", "FINNER",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/generated", "output directory")
	stations := flag.Int("stations", 4, "number of station exports to write")
	hours := flag.Int("hours", 48, "hourly rows per station")
	seed := flag.Uint64("seed", 1, "random seed")
	samples := flag.Bool("samples", true, "also write the MACE HEAD and ROCHES POINT reference exports")
	flag.Parse()

	if *stations < 0 || *stations > len(stationNames) {
		return fmt.Errorf("-stations must be between 0 and %d", len(stationNames))
	}
	if *hours < 0 {
		return fmt.Errorf("-hours must not be negative")
	}

	// Set a fixed clock for reproducible timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	start := domain.Now().Add(-time.Duration(*hours) * time.Hour)
	rng := rand.New(rand.NewPCG(*seed, *seed^0x5eed))

	for i := range *stations {
		name := stationNames[i]
		e := fixtures.Synthetic(name, start, *hours, i%2 == 1, rng)
		path := filepath.Join(*out, fileName(name))
		if err := e.WriteFile(path); err != nil {
			return err
		}
		log.Printf("%s: %d rows, header on line %d, %d columns", path, len(e.Rows), e.HeaderLine(), len(e.Header))
	}

	if *samples {
		for name, e := range map[string]fixtures.Export{
			"mace_head.csv":    fixtures.MaceHead(),
			"roches_point.csv": fixtures.RochesPoint(),
		} {
			path := filepath.Join(*out, "samples", name)
			if err := e.WriteFile(path); err != nil {
				return err
			}
			log.Printf("%s: %d rows, header on line %d", path, len(e.Rows), e.HeaderLine())
		}
	}
	return nil
}

func fileName(station string) string {
	return "hly_" + strings.ReplaceAll(strings.ToLower(station), " ", "_") + ".csv"
}
