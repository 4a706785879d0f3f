// Package parse holds the small deterministic parsers for composite strings
// found in scraped listings (date/time pairs, multi-line location blocks,
// pipe-annotated text).
package parse

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DateTimeDelimiter separates date and time in combined listing strings,
// e.g. "Sat, Mar 1 · 7:00 PM".
const DateTimeDelimiter = "·"

// dateLabel is a screen-reader label some listings prefix to the date.
const dateLabel = "Date and time"

// Outcome distinguishes a missing value from one that could not be split.
type Outcome int

const (
	// Absent means the input was empty.
	Absent Outcome = iota
	// Parsed means the expected structure was found.
	Parsed
	// Unparseable means input was present but lacked the expected structure.
	Unparseable
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// DateTime is a date/time pair split from a combined string.
type DateTime struct {
	Date    string
	Time    string
	Outcome Outcome
}

// Head returns the text before the first occurrence of delim, trimmed, and
// whether delim was present. Without delim the whole input is returned.
func Head(s, delim string) (string, bool) {
	head, _, found := strings.Cut(s, delim)
	if !found {
		return s, false
	}
	return strings.TrimSpace(head), true
}

// SplitDateTime splits "<date> · <time>". The first segment is the date
// (with any "Date and time" label removed) and everything after the first
// delimiter is the time.
// When the delimiter is missing the whole trimmed string becomes the date
// and the outcome is Unparseable.
func SplitDateTime(s string) DateTime {
	s = clean(s)
	if s == "" {
		return DateTime{Outcome: Absent}
	}

	date, rest, found := strings.Cut(s, DateTimeDelimiter)
	if !found {
		return DateTime{Date: stripDateLabel(s), Outcome: Unparseable}
	}
	return DateTime{
		Date:    stripDateLabel(date),
		Time:    strings.TrimSpace(rest),
		Outcome: Parsed,
	}
}

func stripDateLabel(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, dateLabel, ""))
}

// clean applies NFKC so non-breaking and narrow spaces in scraped times
// ("7:00 PM") compare equal to plain spaces.
func clean(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// LocationBlock is a multi-line venue block:
//
//	line 0: label (ignored)
//	line 1: venue name
//	line 2: street address
type LocationBlock struct {
	Venue   string
	Address string
	Outcome Outcome
}

// SplitLocationBlock splits a location block on line breaks. A single-line
// block is Unparseable and the whole trimmed string becomes the venue.
func SplitLocationBlock(s string) LocationBlock {
	if strings.TrimSpace(s) == "" {
		return LocationBlock{Outcome: Absent}
	}
	lines := splitLines(s)
	if len(lines) < 2 {
		return LocationBlock{Venue: strings.TrimSpace(s), Outcome: Unparseable}
	}
	lb := LocationBlock{Venue: strings.TrimSpace(lines[1]), Outcome: Parsed}
	if len(lines) > 2 {
		lb.Address = strings.TrimSpace(lines[2])
	}
	return lb
}

// VenueLine returns line 1 of a location block, or the whole string when
// the block has a single line.
func VenueLine(s string) string {
	lines := splitLines(s)
	if len(lines) < 2 {
		return s
	}
	return lines[1]
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// FirstSegment returns the first pipe-separated segment of s when s contains
// a pipe and is longer than minLen characters; otherwise s is returned as is.
// Scraped organiser/description fields often carry "|"-joined annotations.
func FirstSegment(s string, minLen int) string {
	if !strings.Contains(s, "|") || len([]rune(s)) <= minLen {
		return s
	}
	head, _, _ := strings.Cut(s, "|")
	return strings.TrimSpace(head)
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
