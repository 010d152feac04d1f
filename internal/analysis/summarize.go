package analysis

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// Geocoding outcomes recorded in StationSummary.GeoSource.
const (
	GeoSourceForward = "forward"
	GeoSourceFailed  = "failed"
	GeoSourceNone    = "none"
)

// Summarizer aggregates wind speed per station and calendar year, optionally
// attaching station coordinates from a geocoder.
type Summarizer struct {
	geocoder domain.Geocoder
	region   string
	logger   *slog.Logger
}

// NewSummarizer creates a Summarizer. Pass a nil geocoder to skip
// coordinates. region qualifies station names when geocoding.
func NewSummarizer(geocoder domain.Geocoder, region string, logger *slog.Logger) *Summarizer {
	return &Summarizer{geocoder: geocoder, region: region, logger: logger}
}

type summaryKey struct {
	station string
	year    int
}

// Summarize returns one summary per station and year of a normalized frame,
// ordered by station then year. Rows lacking a station or a date are not
// counted.
func (s *Summarizer) Summarize(ctx context.Context, f *frame.Frame) []domain.StationSummary {
	acc := make(map[summaryKey]*domain.StationSummary)
	sums := make(map[summaryKey]float64)

	for _, r := range f.Rows() {
		if r.IsMissing(domain.StationColumn) {
			continue
		}
		ts, ok := r.Time(domain.DateColumn)
		if !ok {
			continue
		}
		k := summaryKey{station: r.Text(domain.StationColumn), year: ts.Year()}
		sum, ok := acc[k]
		if !ok {
			sum = &domain.StationSummary{Station: k.station, Year: k.year, First: ts, Last: ts, MaxWindSpeed: math.Inf(-1)}
			acc[k] = sum
		}
		sum.Rows++
		if ts.Before(sum.First) {
			sum.First = ts
		}
		if ts.After(sum.Last) {
			sum.Last = ts
		}
		if v, ok := r.Float("wdsp"); ok {
			sum.WindReadings++
			sums[k] += v
			sum.MaxWindSpeed = max(sum.MaxWindSpeed, v)
		}
	}

	out := make([]domain.StationSummary, 0, len(acc))
	for k, sum := range acc {
		if sum.WindReadings > 0 {
			sum.MeanWindSpeed = sums[k] / float64(sum.WindReadings)
		} else {
			sum.MaxWindSpeed = 0
		}
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b domain.StationSummary) int {
		return cmp.Or(cmp.Compare(a.Station, b.Station), cmp.Compare(a.Year, b.Year))
	})

	s.locate(ctx, out)
	return out
}

// locate geocodes each distinct station once. Failures degrade to summaries
// without coordinates.
func (s *Summarizer) locate(ctx context.Context, summaries []domain.StationSummary) {
	type location struct {
		lat, lon float64
		source   string
	}
	resolved := make(map[string]location)

	for i := range summaries {
		sum := &summaries[i]
		if s.geocoder == nil {
			sum.GeoSource = GeoSourceNone
			continue
		}
		loc, ok := resolved[sum.Station]
		if !ok {
			loc = location{source: GeoSourceNone}
			result, err := s.geocoder.ForwardGeocode(ctx, sum.Station, s.region)
			switch {
			case err != nil:
				s.logger.Warn("station geocoding failed", "station", sum.Station, "region", s.region, "error", err)
				loc.source = GeoSourceFailed
			case result.Lat != 0 || result.Lon != 0:
				loc = location{lat: result.Lat, lon: result.Lon, source: GeoSourceForward}
			}
			resolved[sum.Station] = loc
		}
		sum.Lat, sum.Lon, sum.GeoSource = loc.lat, loc.lon, loc.source
	}
}
