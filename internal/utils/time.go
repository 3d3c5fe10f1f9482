package util

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseISO parses the timestamp shapes the two vendors emit: RFC 3339 with
// "Z" or a numeric offset, RFC 3339 without sub-second digits, and bare
// dates. dateOnly reports whether the value carried no time component.
func ParseISO(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}

	if !strings.Contains(s, "T") {
		t, err = time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return t, true, nil
	}

	// Todoist emits naive datetimes for floating due times; treat them as UTC.
	if !strings.HasSuffix(s, "Z") && !strings.ContainsAny(s[strings.Index(s, "T"):], "+-") {
		s += "Z"
	}

	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	return t, false, nil
}

// FormatISO renders a timestamp the way ParseISO reads it back.
func FormatISO(t time.Time, dateOnly bool) string {
	if dateOnly {
		return t.Format(dateLayout)
	}
	return t.UTC().Format(time.RFC3339)
}
