// Package dedup removes duplicate event listings in two phases: Raw runs on
// source-native records before geocoding so each unique listing is geocoded
// once; Canonical runs on normalized events from all sources and merges
// repeats into the first occurrence.
package dedup

// Fingerprint is the deduplication key for a listing. It is a heuristic:
// distinct events with the same title, venue string and day collapse.
type Fingerprint struct {
	Title    string
	Location string
	Date     string
}
