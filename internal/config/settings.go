package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Ordering selects how group directories are qualified and ordered within
// a date.
type Ordering string

const (
	// OrderingABC admits only all-letter names and orders them like
	// spreadsheet columns: a, b, ..., z, aa, ab, ...
	OrderingABC Ordering = "abc"
	// OrderingNum admits only names that parse as real numbers and orders
	// them ascending.
	OrderingNum Ordering = "num"
	// OrderingNatural admits every name and orders lexicographically.
	OrderingNatural Ordering = "natural"
)

// ParseOrdering converts a string into a known Ordering.
func ParseOrdering(value string) (Ordering, bool) {
	switch Ordering(strings.ToLower(strings.TrimSpace(value))) {
	case OrderingABC:
		return OrderingABC, true
	case OrderingNum:
		return OrderingNum, true
	case OrderingNatural:
		return OrderingNatural, true
	}
	return "", false
}

// WhiteBalance holds the four raw channel multipliers (dcraw -r).
type WhiteBalance struct {
	Red    float64
	Green1 float64
	Blue   float64
	Green2 float64
}

// ChromaticAberration holds the red and blue correction multipliers
// (dcraw -C).
type ChromaticAberration struct {
	Red  float64
	Blue float64
}

// Settings is the fully resolved configuration for one (date, group).
// It is immutable after construction and shared read-only by every work
// item built under that group.
type Settings struct {
	// DateFormat is the coerced Go time layout used to parse date
	// directory names.
	DateFormat string

	IncludeDates  []string
	ExcludeDates  []string
	IncludeGroups []string
	ExcludeGroups []string
	GroupOrdering Ordering

	WhiteBalance        WhiteBalance
	ChromaticAberration ChromaticAberration
	MedianFilter        int
	DarkFrame           string
	ExcludePhotos       []string
}

// ExcludedDates returns the exclude list with explicitly included dates
// removed; inclusion supersedes exclusion.
func (s *Settings) ExcludedDates() []string {
	return subtract(s.ExcludeDates, s.IncludeDates)
}

// ExcludedGroups returns the names of groups excluded for a date, with
// explicitly included groups removed. Group references have the form
// "date/group".
func (s *Settings) ExcludedGroups(date string) []string {
	prefix := date + "/"
	var excluded []string
	for _, ref := range subtract(s.ExcludeGroups, s.IncludeGroups) {
		if strings.HasPrefix(ref, prefix) {
			excluded = append(excluded, strings.TrimPrefix(ref, prefix))
		}
	}
	return excluded
}

func subtract(values, removed []string) []string {
	if len(values) == 0 {
		return nil
	}
	removedSet := make(map[string]struct{}, len(removed))
	for _, v := range removed {
		removedSet[v] = struct{}{}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := removedSet[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// SampleSpec describes an optional subset of the scanned photos to
// process.
type SampleSpec struct {
	Enabled    bool
	Randomized bool
	Size       int
}

// ParseSampleSpec parses a sample value: a positive integer selects an
// ordered sample, a "~" prefix selects a randomized one, and "-1" or an
// empty string disables sampling. Zero is rejected.
func ParseSampleSpec(value string) (SampleSpec, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "-1" {
		return SampleSpec{}, nil
	}

	randomized := strings.HasPrefix(trimmed, "~")
	number := strings.TrimPrefix(trimmed, "~")

	size, err := strconv.Atoi(number)
	if err != nil || size <= 0 {
		return SampleSpec{}, fmt.Errorf(
			"invalid sample %q: specify a positive integer (with optional ~ prefix for randomization) or -1 to disable",
			value,
		)
	}

	return SampleSpec{Enabled: true, Randomized: randomized, Size: size}, nil
}
