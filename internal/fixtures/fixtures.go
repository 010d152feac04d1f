// Package fixtures builds station exports in the published layout: a
// metadata preamble, a header line, and hourly rows. It backs the test
// suites and cmd/genfixtures.
package fixtures

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
)

// CoreHeader is the header of an export carrying core columns only.
var CoreHeader = []string{
	"date", "ind", "rain", "ind", "temp", "ind", "wetb", "dewpt", "vappr",
	"rhum", "msl", "ind", "wdsp", "ind", "wddir",
}

// ExtendedHeader adds the present-weather, visibility, and cloud columns.
var ExtendedHeader = append(append([]string{}, CoreHeader...), "ww", "w", "sun", "vis", "clht", "clamt")

// Export is one station file.
type Export struct {
	// Station is written on the label line; empty omits the line.
	Station string
	// Preamble lines follow the station line and precede the header.
	Preamble []string
	Header   []string
	Rows     [][]string
}

// HeaderLine returns the 0-based line index of the header in Lines.
func (e Export) HeaderLine() int {
	n := len(e.Preamble)
	if e.Station != "" {
		n++
	}
	return n
}

// Lines renders the export.
func (e Export) Lines() []string {
	lines := make([]string, 0, e.HeaderLine()+1+len(e.Rows))
	if e.Station != "" {
		lines = append(lines, domain.StationLabel+" "+e.Station)
	}
	lines = append(lines, e.Preamble...)
	lines = append(lines, strings.Join(e.Header, ","))
	for _, r := range e.Rows {
		lines = append(lines, strings.Join(r, ","))
	}
	return lines
}

// WriteFile writes the export to path, creating parent directories.
func (e Export) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	data := strings.Join(e.Lines(), "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

func legend(extended bool) []string {
	lines := []string{
		"date:  -  Date and Time (utc)",
		"rain:  -  Precipitation Amount (mm)",
		"temp:  -  Air Temperature (C)",
		"wetb:  -  Wet Bulb Temperature (C)",
		"dewpt: -  Dew Point Temperature (C)",
		"vappr: -  Vapour Pressure (hPa)",
		"rhum:  -  Relative Humidity (%)",
		"msl:   -  Mean Sea Level Pressure (hPa)",
		"wdsp:  -  Mean Wind Speed (kt)",
		"wddir: -  Predominant Wind Direction (deg)",
	}
	if extended {
		lines = append(lines,
			"ww:    -  Present Weather - decode below",
			"w:     -  Past Weather - decode below",
			"sun:   -  Sunshine duration (hours)",
			"vis:   -  Visibility (m)",
			"clht:  -  Cloud height (100's of ft) - 999 if none",
			"clamt: -  Cloud amount",
		)
	}
	return append(lines, "ind:   -  Indicator")
}

// MaceHead is a core-only export whose header is on line 17 with five rows.
func MaceHead() Export {
	preamble := []string{
		"Station Height: 21 M ",
		"Latitude:53.326  ,Longitude: -9.901",
		"",
		"",
	}
	preamble = append(preamble, legend(false)...)
	preamble = append(preamble, "")
	return Export{
		Station:  "mace head",
		Preamble: preamble,
		Header:   CoreHeader,
		Rows: [][]string{
			split("13-aug-2003 01:00,0,0.0,0,14.4,0,13.9,13.4,15.4,94,1014.6,2,8,2,230"),
			split("13-aug-2003 02:00,0,0.0,0,14.3,0,13.8,13.3,15.3,94,1014.4,2,9,2,240"),
			split("13-aug-2003 03:00,0,0.1,0,14.1,0,13.7,13.3,15.3,95,1014.1,2,11,2,240"),
			split("13-aug-2003 04:00,0,0.0,0,14.0,0,13.6,13.2,15.2,95,1013.9,2,10,2,250"),
			split("13-aug-2003 05:00,0,0.0,0,13.8,0,13.5,13.1,15.1,96,1013.6,2,12,2,250"),
		},
	}
}

// RochesPoint is a core+extended export whose header is on line 12 with
// five rows. The sun column is blank throughout, the way the source writes
// unreported values.
func RochesPoint() Export {
	preamble := []string{
		"Station Height: 40 M ",
		"Latitude:51.793  ,Longitude: -8.244",
		"",
		"",
		"date:  -  Date and Time (utc)",
		"rain, temp, wetb, dewpt, vappr, rhum, msl: core measurements",
		"wdsp:  -  Mean Wind Speed (kt)",
		"wddir: -  Predominant Wind Direction (deg)",
		"ww, w, sun, vis, clht, clamt: present weather and cloud",
		"ind:   -  Indicator",
		"",
	}
	return Export{
		Station:  "Roches Point",
		Preamble: preamble,
		Header:   ExtendedHeader,
		Rows: [][]string{
			split("01-jan-1990 00:00,0,0.0,0,7.9,0,7.1,6.2,9.5,89,1010.2,2,14,2,220,2,11, ,25000,35,7"),
			split("01-jan-1990 01:00,0,0.2,0,7.8,0,7.2,6.5,9.7,91,1009.8,2,15,2,220,60,6, ,20000,25,8"),
			split("01-jan-1990 02:00,0,0.4,0,7.6,0,7.1,6.6,9.7,93,1009.1,2,17,2,210,61,6, ,15000,20,8"),
			split("01-jan-1990 03:00,0,0.1,0,7.5,0,7.0,6.5,9.7,93,1008.7,2,18,2,210,60,6, ,18000,22,7"),
			split("01-jan-1990 04:00,0,0.0,0,7.5,0,6.9,6.3,9.6,92,1008.5,2,16,2,200,2,2, ,30000,40,5"),
		},
	}
}

// Synthetic builds an hourly export for station starting at start. The
// preamble length varies with the station so header detection is exercised.
func Synthetic(station string, start time.Time, hours int, extended bool, rng *rand.Rand) Export {
	header := CoreHeader
	if extended {
		header = ExtendedHeader
	}
	preamble := []string{
		fmt.Sprintf("Station Height: %d M ", 5+rng.IntN(200)),
		fmt.Sprintf("Latitude:%.3f  ,Longitude: %.3f", 51+rng.Float64()*4, -10+rng.Float64()*4),
	}
	for i := rng.IntN(4); i > 0; i-- {
		preamble = append(preamble, "")
	}
	preamble = append(preamble, legend(extended)...)
	preamble = append(preamble, "")

	rows := make([][]string, 0, hours)
	for h := 0; h < hours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		temp := 10 + 6*math.Sin(float64(ts.YearDay())/365*2*math.Pi) + rng.NormFloat64()
		wdsp := math.Max(0, math.Round(12+rng.NormFloat64()*5))
		row := []string{
			domain.FormatTimestamp(ts),
			"0", fmt.Sprintf("%.1f", math.Max(0, rng.NormFloat64()*0.4)),
			"0", fmt.Sprintf("%.1f", temp),
			"0", fmt.Sprintf("%.1f", temp-0.5),
			fmt.Sprintf("%.1f", temp-1),
			fmt.Sprintf("%.1f", 10+rng.Float64()*4),
			fmt.Sprintf("%d", 70+rng.IntN(30)),
			fmt.Sprintf("%.1f", 1000+rng.NormFloat64()*10),
			"2", fmt.Sprintf("%.0f", wdsp),
			"2", fmt.Sprintf("%d", 10*rng.IntN(36)),
		}
		if extended {
			row = append(row,
				fmt.Sprintf("%d", rng.IntN(100)),
				fmt.Sprintf("%d", rng.IntN(10)),
				" ",
				fmt.Sprintf("%d", 1000*(5+rng.IntN(40))),
				fmt.Sprintf("%d", 10+rng.IntN(990)),
				fmt.Sprintf("%d", rng.IntN(9)),
			)
		}
		rows = append(rows, row)
	}

	return Export{Station: station, Preamble: preamble, Header: header, Rows: rows}
}

func split(line string) []string {
	return strings.Split(line, ",")
}
