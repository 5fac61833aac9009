package dataset

import (
	"math"
	"strings"
	"time"
)

// timeLayouts lists the string forms accepted for timestamps in definition
// files, tried in order. Layouts without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime interprets the flexible timestamp forms dataset definitions use:
// native timestamps from the YAML decoder, epoch seconds as int or float,
// and ISO-8601 strings with or without a zone designator.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	case uint64:
		return time.Unix(int64(t), 0).UTC(), true
	case float64:
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), true
	case string:
		text := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
