package config

import (
	"strings"
	"time"
)

// CoerceDateFormat converts a user-facing date format such as "yyyy-mm-dd"
// into a Go time layout ("2006-01-02"). Replacements, case-insensitive:
//
//	yyyy -> 2006    yy -> 06
//	mm   -> 01      m  -> 1
//	dd   -> 02      d  -> 2
//
// A backslash escapes the next character so it is copied verbatim; escape
// a backslash with another backslash.
func CoerceDateFormat(format string) string {
	if format == "" {
		return format
	}

	var b strings.Builder
	b.Grow(len(format) + 4)

	for i := 0; i < len(format); {
		if format[i] == '\\' {
			if i+1 == len(format) {
				b.WriteByte('\\')
				return b.String()
			}
			b.WriteByte(format[i+1])
			i += 2
			continue
		}

		rest := strings.ToLower(format[i:min(i+4, len(format))])
		switch {
		case strings.HasPrefix(rest, "yyyy"):
			b.WriteString("2006")
			i += 4
		case strings.HasPrefix(rest, "yy"):
			b.WriteString("06")
			i += 2
		case rest[0] == 'm':
			if strings.HasPrefix(rest, "mm") {
				b.WriteString("01")
				i += 2
			} else {
				b.WriteString("1")
				i++
			}
		case rest[0] == 'd':
			if strings.HasPrefix(rest, "dd") {
				b.WriteString("02")
				i += 2
			} else {
				b.WriteString("2")
				i++
			}
		default:
			b.WriteByte(format[i])
			i++
		}
	}

	return b.String()
}

// ParseDate parses a directory name under the given coerced layout. The
// name must round-trip exactly: "1-2-3" never qualifies under a
// zero-padded layout even when time.Parse would accept it.
func ParseDate(name, layout string) (time.Time, bool) {
	parsed, err := time.Parse(layout, name)
	if err != nil {
		return time.Time{}, false
	}
	if parsed.Format(layout) != name {
		return time.Time{}, false
	}
	return parsed, true
}
