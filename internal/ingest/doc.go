// Package ingest turns a directory of station exports into one unified
// dataset: it finds the exports, locates each file's real header past its
// metadata preamble, reads the station name from that preamble, parses the
// table, and concatenates every file under a union schema.
package ingest
