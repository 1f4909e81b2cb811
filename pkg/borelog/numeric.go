package borelog

import (
	"strconv"
	"strings"
)

// numericSentinels are scalar cell values that mean "no value" for a
// numeric field. Empty string and absent values are handled by the
// caller before reaching these checks. Zero is never a sentinel.
var numericSentinels = map[string]bool{
	"-":               true,
	"#VALUE!":         true,
	"[object Object]": true,
}

// safeNumber parses s as a float64, returning (value, true) on success or
// (0, false) when s is empty, whitespace, or one of the numeric sentinels.
func safeNumber(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || numericSentinels[trimmed] {
		return 0, false
	}
	return parseFloatLoose(trimmed)
}

// safeInt parses s as an integer, applying the same sentinel rules as
// safeNumber.
func safeInt(s string) (int, bool) {
	f, ok := safeNumber(s)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// safeString trims whitespace and maps empty-after-trim to "not present".
func safeString(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// parseFloatLoose tolerates a trailing unit suffix like "m" or "%" and a
// thousands separator, both of which appear in borelog spreadsheets.
func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "m")
	s = strings.TrimSuffix(s, "M")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
