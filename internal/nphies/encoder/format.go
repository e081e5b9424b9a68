package encoder

import (
	"strings"
	"time"
)

// The exchange runs on Arabian Standard Time; timestamps that must carry an
// offset always use +03:00 regardless of host timezone.
var riyadhZone = time.FixedZone("AST", 3*60*60)

// DateOnly normalizes a string or time.Time to YYYY-MM-DD. Strings that
// already lead with a date are sliced, never re-parsed, so a caller-supplied
// date can not shift across a timezone boundary.
func DateOnly(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	case string:
		return sliceDate(t)
	}
	return ""
}

// DateTime normalizes a string or time.Time to a UTC FHIR dateTime.
func DateTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case string:
		if t == "" {
			return ""
		}
		if strings.Contains(t, "T") && len(t) > 10 {
			if strings.ContainsAny(t[10:], "Z+-") {
				return t
			}
			return t + "Z"
		}
		if d := sliceDate(t); d != "" {
			return d + "T00:00:00Z"
		}
	}
	return ""
}

// DateTimeOffset normalizes a string or time.Time to a FHIR dateTime with
// the fixed +03:00 exchange offset.
func DateTimeOffset(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.In(riyadhZone).Format(time.RFC3339)
	case string:
		if t == "" {
			return ""
		}
		if strings.Contains(t, "T") && len(t) > 10 {
			if strings.ContainsAny(t[10:], "Z+-") {
				return t
			}
			return t + "+03:00"
		}
		if d := sliceDate(t); d != "" {
			return d + "T00:00:00+03:00"
		}
	}
	return ""
}

// sliceDate extracts the leading YYYY-MM-DD from a date or date-time string.
func sliceDate(s string) string {
	if len(s) < 10 {
		return ""
	}
	d := s[:10]
	if d[4] != '-' || d[7] != '-' {
		return ""
	}
	return d
}
