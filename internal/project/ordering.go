package project

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"framemill/internal/config"
)

// qualifies reports whether a directory name is admitted as a group under
// the given ordering policy.
func qualifies(name string, ordering config.Ordering) bool {
	switch ordering {
	case config.OrderingABC:
		if name == "" {
			return false
		}
		for _, r := range name {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		return true
	case config.OrderingNum:
		_, err := strconv.ParseFloat(name, 64)
		return err == nil
	default:
		return true
	}
}

// sortGroups orders qualified group names in place. ABC orders like
// spreadsheet columns (a, b, ..., z, aa, ab), num orders by parsed value
// ascending, and natural orders lexicographically.
func sortGroups(names []string, ordering config.Ordering) {
	switch ordering {
	case config.OrderingABC:
		sort.Slice(names, func(i, j int) bool {
			a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			return a < b
		})
	case config.OrderingNum:
		sort.Slice(names, func(i, j int) bool {
			a, _ := strconv.ParseFloat(names[i], 64)
			b, _ := strconv.ParseFloat(names[j], 64)
			if a != b {
				return a < b
			}
			return names[i] < names[j]
		})
	default:
		sort.Strings(names)
	}
}
