// Package pipeline orchestrates one batch run: assemble the unified dataset,
// record its missing values, normalize it, and hand it to each sink.
package pipeline
