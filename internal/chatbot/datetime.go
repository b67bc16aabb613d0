package chatbot

import (
	"strings"
	"time"
)

// dateTimeLayouts are tried in order; the first that parses wins. Go accepts a
// fractional second after the seconds field even when the layout omits it.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"02/01/2006 15:04",
}

// ParseDateTime reads a wall-clock date and time in loc. It reports false when
// no accepted layout matches.
func ParseDateTime(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
