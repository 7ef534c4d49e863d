package property

import (
	"strings"
	"unicode"
)

const (
	statePrefixLen = 3
	cityPrefixLen  = 4
)

// BuildIdentity derives the custom_id of a property:
//
//	TRIM(UPPER(first 3 chars of state)) - UPPER(first 4 chars of city without whitespace) - digits(address)
//
// The state is cut before it is trimmed, so "NY State" yields "NY" and "  New York" yields "N".
// The function is pure. Degenerate input still yields a deterministic id, e.g. an address
// without digits produces a trailing empty segment ("NEW-NEWY-").
func BuildIdentity(state, city, address string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(strings.ToUpper(prefix(state, statePrefixLen))))
	sb.WriteByte('-')
	sb.WriteString(strings.ToUpper(prefix(stripSpace(city), cityPrefixLen)))
	sb.WriteByte('-')
	for _, r := range address {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// prefix returns the first n runes of s
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// stripSpace removes every whitespace rune from s
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
