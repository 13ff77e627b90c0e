package portal

import (
	"strings"
	"time"
)

// Epoch values above this are milliseconds, anything at or below it seconds.
const epochMillisThreshold = 10_000_000_000

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"20060102T150405Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"20060102T150405",
	"2006-01-02",
}

// ParseInstant converts an ISO-8601 string or an epoch seconds/milliseconds
// value into a UTC instant. Zone-less timestamps are taken to be UTC. The
// second result is false for anything it cannot interpret; that is not an
// error, it marks the value as unusable.
func ParseInstant(v any) (time.Time, bool) {
	if !present(v) {
		return time.Time{}, false
	}
	if s, ok := v.(string); ok {
		if t, ok := parseISO(s); ok {
			return t, true
		}
	}
	if _, isBool := v.(bool); isBool {
		return time.Time{}, false
	}
	n, ok := toInt64(v)
	if !ok {
		return time.Time{}, false
	}
	return fromEpoch(n), true
}

func parseISO(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		// time.Parse yields UTC for layouts without a zone.
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromEpoch(n int64) time.Time {
	if n > epochMillisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
