package ingest

import (
	"strconv"
	"strings"
	"unicode"
)

// parseLeadingInt reads an optionally signed run of digits at the start of s
// after leading whitespace, ignoring anything that follows ("2200abc" is 2200).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PostalRule is an exact postal code or an inclusive numeric range.
type PostalRule struct {
	Low  int
	High int
}

// ParsePostalRule parses "2200" or "1000-2999". Bounds that are not numeric
// make the rule unusable and ok is false.
func ParsePostalRule(s string) (PostalRule, bool) {
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		low, okLow := parseLeadingInt(parts[0])
		high, okHigh := parseLeadingInt(parts[1])
		if !okLow || !okHigh {
			return PostalRule{}, false
		}
		return PostalRule{Low: low, High: high}, true
	}
	n, ok := parseLeadingInt(s)
	if !ok {
		return PostalRule{}, false
	}
	return PostalRule{Low: n, High: n}, true
}

// Contains reports whether code lies within the rule bounds.
func (r PostalRule) Contains(code int) bool {
	return code >= r.Low && code <= r.High
}

// ParsePostalCode extracts the numeric postal code used for rule matching.
func ParsePostalCode(postalCode string) (int, bool) {
	return parseLeadingInt(strings.TrimSpace(postalCode))
}
