package domain

import "time"

// Observation is a typed view of one normalized row, used by the analysis
// layer. Measurements are pointers so a missing cell stays distinguishable
// from a zero reading.
type Observation struct {
	Station       string    `json:"station"`
	Date          time.Time `json:"date"`
	WindSpeed     *float64  `json:"wdsp,omitempty"`
	WindDirection *float64  `json:"wddir,omitempty"`
	Temperature   *float64  `json:"temp,omitempty"`
	Pressure      *float64  `json:"msl,omitempty"`
	Humidity      *float64  `json:"rhum,omitempty"`
	Rain          *float64  `json:"rain,omitempty"`
}

// StationSummary aggregates one station's observations for one calendar year.
type StationSummary struct {
	Station       string    `csv:"station" json:"station"`
	Year          int       `csv:"year" json:"year"`
	Rows          int       `csv:"rows" json:"rows"`
	WindReadings  int       `csv:"wind_readings" json:"wind_readings"`
	MeanWindSpeed float64   `csv:"mean_wdsp" json:"mean_wdsp"`
	MaxWindSpeed  float64   `csv:"max_wdsp" json:"max_wdsp"`
	First         time.Time `csv:"first" json:"first"`
	Last          time.Time `csv:"last" json:"last"`
	Lat           float64   `csv:"lat,omitempty" json:"lat,omitempty"`
	Lon           float64   `csv:"lon,omitempty" json:"lon,omitempty"`
	GeoSource     string    `csv:"geo_source,omitempty" json:"geo_source,omitempty"`
}
