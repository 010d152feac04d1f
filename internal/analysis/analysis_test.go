package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

func hour(year, h int) time.Time {
	return time.Date(year, 1, 1, h, 0, 0, 0, time.UTC)
}

// normalized builds a small normalized frame: two stations, two years,
// one row without a wind reading and one without a date.
func normalized(t *testing.T) *frame.Frame {
	t.Helper()
	times := []time.Time{hour(2003, 0), hour(2003, 1), hour(2004, 0), hour(2003, 0), hour(2003, 2), {}}
	valid := []bool{true, true, true, true, true, false}
	f, err := frame.New(
		frame.NewTimeSeries(domain.DateColumn, times, valid),
		frame.NewSeries("wdsp", []string{"10", "20", "5", "", "8", "3"}),
		frame.NewSeries("temp", []string{"7.5", "", "6", "5", "4", "3"}),
		frame.NewTextSeries(domain.StationColumn, []string{"MACE HEAD", "MACE HEAD", "MACE HEAD", "ROCHES POINT", "ROCHES POINT", "ROCHES POINT"}),
	)
	require.NoError(t, err)
	return f
}

func TestMissingCounts(t *testing.T) {
	got := MissingCounts(normalized(t))
	assert.Equal(t, []ColumnMissing{
		{Column: "date", Missing: 1, Rows: 6},
		{Column: "wdsp", Missing: 1, Rows: 6},
		{Column: "temp", Missing: 1, Rows: 6},
		{Column: "station", Missing: 0, Rows: 6},
	}, got)
}

func TestFilterStation(t *testing.T) {
	f := normalized(t)

	sub := FilterStation(f, " roches point ")
	require.Equal(t, 3, sub.NumRows())
	for _, r := range sub.Rows() {
		assert.Equal(t, "ROCHES POINT", r.Text(domain.StationColumn))
	}
	ts, _ := sub.Series()[0].Time(1)
	assert.Equal(t, hour(2003, 2), ts, "original order kept")

	assert.Zero(t, FilterStation(f, "VALENTIA").NumRows())
}

func TestFilterStation_RowCountsAddUp(t *testing.T) {
	f := normalized(t)
	total := 0
	for _, name := range Stations(f) {
		total += FilterStation(f, name).NumRows()
	}
	assert.Equal(t, f.NumRows(), total)
}

func TestStations(t *testing.T) {
	assert.Equal(t, []string{"MACE HEAD", "ROCHES POINT"}, Stations(normalized(t)))
}

func TestObservations(t *testing.T) {
	obs := Observations(normalized(t))
	require.Len(t, obs, 6)

	assert.Equal(t, "MACE HEAD", obs[0].Station)
	assert.Equal(t, hour(2003, 0), obs[0].Date)
	require.NotNil(t, obs[0].WindSpeed)
	assert.InDelta(t, 10, *obs[0].WindSpeed, 1e-9)
	require.NotNil(t, obs[0].Temperature)
	assert.Nil(t, obs[0].Pressure, "absent column")

	assert.Nil(t, obs[1].Temperature)
	assert.Nil(t, obs[3].WindSpeed)
	assert.True(t, obs[5].Date.IsZero())
}

func TestSummarize(t *testing.T) {
	s := NewSummarizer(nil, "", observability.DiscardLogger())
	got := s.Summarize(context.Background(), normalized(t))

	require.Len(t, got, 3)

	assert.Equal(t, domain.StationSummary{
		Station: "MACE HEAD", Year: 2003, Rows: 2, WindReadings: 2,
		MeanWindSpeed: 15, MaxWindSpeed: 20,
		First: hour(2003, 0), Last: hour(2003, 1), GeoSource: GeoSourceNone,
	}, got[0])
	assert.Equal(t, 2004, got[1].Year)
	assert.Equal(t, 1, got[1].Rows)

	// The undated row is skipped and the row without wind is counted.
	assert.Equal(t, "ROCHES POINT", got[2].Station)
	assert.Equal(t, 2, got[2].Rows)
	assert.Equal(t, 1, got[2].WindReadings)
	assert.InDelta(t, 8, got[2].MeanWindSpeed, 1e-9)
}

func TestSummarize_NoWindReadings(t *testing.T) {
	f, err := frame.New(
		frame.NewTimeSeries(domain.DateColumn, []time.Time{hour(2010, 0)}, []bool{true}),
		frame.NewTextSeries(domain.StationColumn, []string{"X"}),
	)
	require.NoError(t, err)

	got := NewSummarizer(nil, "", observability.DiscardLogger()).Summarize(context.Background(), f)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].WindReadings)
	assert.Zero(t, got[0].MaxWindSpeed)
	assert.Zero(t, got[0].MeanWindSpeed)
}

type stubGeocoder struct {
	results map[string]domain.GeocodingResult
	err     error
	calls   []string
}

func (g *stubGeocoder) ForwardGeocode(_ context.Context, name, region string) (domain.GeocodingResult, error) {
	g.calls = append(g.calls, name+"|"+region)
	if g.err != nil {
		return domain.GeocodingResult{}, g.err
	}
	return g.results[name], nil
}

func TestSummarize_Geocoding(t *testing.T) {
	geo := &stubGeocoder{results: map[string]domain.GeocodingResult{
		"MACE HEAD": {Lat: 53.326, Lon: -9.901},
	}}
	got := NewSummarizer(geo, "Ireland", observability.DiscardLogger()).Summarize(context.Background(), normalized(t))
	require.Len(t, got, 3)

	assert.Equal(t, []string{"MACE HEAD|Ireland", "ROCHES POINT|Ireland"}, geo.calls, "one lookup per station")

	assert.Equal(t, GeoSourceForward, got[0].GeoSource)
	assert.InDelta(t, 53.326, got[0].Lat, 1e-9)
	assert.Equal(t, GeoSourceForward, got[1].GeoSource)
	assert.Equal(t, GeoSourceNone, got[2].GeoSource, "no coordinates returned")
}

func TestSummarize_GeocodingFailureDegrades(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("upstream down")}
	got := NewSummarizer(geo, "Ireland", observability.DiscardLogger()).Summarize(context.Background(), normalized(t))

	require.Len(t, got, 3)
	for _, s := range got {
		assert.Equal(t, GeoSourceFailed, s.GeoSource)
		assert.Zero(t, s.Lat)
	}
}
