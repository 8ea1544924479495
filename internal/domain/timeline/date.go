package timeline

import (
	"regexp"
	"strings"
	"time"
)

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// fallbackLayouts are tried in order when the value has no YYYY-MM-DD part.
var fallbackLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006.01.02",
}

// ParseDate normalizes a free-text date.
//
// A blank value yields nil. A YYYY-MM-DD substring anywhere in the value is
// read as midnight in loc. Otherwise the whole value is tried against the
// fallback layouts, which resolve to UTC unless the value carries its own
// offset. Unrecognised values yield nil.
func ParseDate(raw string, loc *time.Location) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	if m := isoDatePattern.FindString(s); m != "" {
		if t, err := time.ParseInLocation("2006-01-02", m, loc); err == nil {
			return &t
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
