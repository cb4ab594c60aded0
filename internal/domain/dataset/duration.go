package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ParseDurationSeconds accepts HH:MM:SS, HH:MM, integer seconds, or a
// numeric string, preserving sign. Malformed input yields (0, false); the
// caller decides whether that warrants a warning.
func ParseDurationSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var secs float64
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 && len(parts) != 3 {
			return 0, false
		}
		mult := float64(3600)
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil || v < 0 {
				return 0, false
			}
			secs += v * mult
			mult /= 60
		}
	} else {
		v, ok := parseNumber(s)
		if !ok {
			return 0, false
		}
		secs = v
	}
	if neg {
		secs = -secs
	}
	return secs, true
}

// parseNumber coerces a numeric string, tolerating a comma decimal
// separator and surrounding whitespace.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// "1.234,56" and "1234,56" both mean 1234.56 in the source locale.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// dateLayouts lists the formats the canonicalizer accepts for the
// observation date, in resolution order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// parseDate resolves a raw date value to a date-only UTC time.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}
