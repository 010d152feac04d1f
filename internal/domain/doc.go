// Package domain models hourly weather-station exports and the unified
// dataset assembled from them.
//
// # Data Source
//
// Each station publishes one CSV export covering its full hourly record. The
// exports are not plain CSV: a free-text metadata preamble of variable length
// precedes the table. The preamble names the station, describes its location,
// and lists a legend for every column. Its length differs between stations
// (and between export vintages of the same station), so the table start must
// be detected rather than assumed.
//
//	Station Name: MACE HEAD
//	Station Height: 21 M
//	Latitude:53.326  ,Longitude: -9.901
//	...
//	date,ind,rain,ind,temp,ind,wetb,dewpt,vappr,rhum,msl,ind,wdsp,ind,wddir
//	13-aug-2003 01:00,0,0.0,0,14.4,0,13.9,13.4,15.4,94,1014.6,2,8,2,230
//
// # Header Detection
//
// The header line is the first line that contains both [HeaderDateToken] and
// [HeaderWindToken], compared case-insensitively. Metadata lines can mention
// either word on its own (the legend does) but never both, while the header
// always carries both.
//
// # Station Identity
//
// The station is named only in the preamble, on the line beginning with
// [StationLabel]. The name is trimmed and upper-cased and then copied into a
// [StationColumn] on every row so the unified dataset can be grouped and
// filtered by station.
//
// # Column Conventions
//
// Core columns ([CoreColumns]) appear in every export. Extended columns
// ([ExtendedColumns]) appear only for stations that report present weather,
// visibility, sunshine, and cloud. Every quality indicator is called "ind" in
// the source, so the header is rewritten: an "ind" cell takes the name of the
// measurement that follows it, prefixed with "i" (ind,rain -> irain). See
// [NormalizeHeader].
//
// Blank cells and whitespace-only cells both mean "not observed". The source
// does not distinguish a value missing at the station from a column missing
// from the export, so neither does the unified dataset.
//
// Timestamps use day-month abbreviation-year with 24-hour time, for example
// "13-aug-2003 01:00", in UTC. They are parsed with [TimestampLayout] only;
// the format is never inferred.
package domain
