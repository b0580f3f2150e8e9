package normalizer

import (
	"strconv"
	"strings"
	"time"
)

// layouts are tried in order after cleanText has removed commas and connector
// words. Month names match case-insensitively.
var layouts = []string{
	"January 2 2006 3:04 PM",
	"January 2 2006 3:04:05 PM",
	"January 2 2006 15:04",
	"January 2 2006 15:04:05",
	"January 2 2006",
	"Jan 2 2006 3:04 PM",
	"Jan 2 2006 3:04:05 PM",
	"Jan 2 2006 15:04",
	"Jan 2 2006 15:04:05",
	"Jan 2 2006",
	"2 January 2006 3:04 PM",
	"2 January 2006 15:04",
	"2 January 2006",
	"2 Jan 2006 3:04 PM",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"Mon Jan 2 2006 15:04:05",
	"Monday January 2 2006 3:04 PM",
}

// isoLayouts are tried against the trimmed text before any cleanup.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date parses a stored order date in the given location. Zone-less text is
// interpreted in loc; a nil loc means time.Local. The second result is false
// when nothing matched, and callers must then leave the record out of any
// date-based aggregation.
func Date(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := epoch(s, loc); ok {
		return t, true
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}

	cleaned := cleanText(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanText strips the platform wording quirks: the " at " connector between
// date and time, commas, repeated whitespace and lowercase meridiem markers.
func cleanText(s string) string {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	out := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		lower := strings.ToLower(f)
		switch lower {
		case "at":
			continue
		case "am", "pm", "a.m.", "p.m.":
			out = append(out, strings.ToUpper(strings.ReplaceAll(lower, ".", "")))
			continue
		}
		// "8:30pm" -> "8:30 PM"
		if n := len(lower); n > 2 && strings.Contains(lower, ":") && (strings.HasSuffix(lower, "am") || strings.HasSuffix(lower, "pm")) {
			out = append(out, f[:n-2], strings.ToUpper(lower[n-2:]))
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// epoch accepts unix seconds (10 digits) or milliseconds (13 digits).
func epoch(s string, loc *time.Location) (time.Time, bool) {
	if len(s) != 10 && len(s) != 13 {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	if len(s) == 13 {
		return time.UnixMilli(n).In(loc), true
	}
	return time.Unix(n, 0).In(loc), true
}
