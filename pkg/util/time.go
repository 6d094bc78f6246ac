package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseSince parses the freshness watermark accepted by cache queries.
// Supported forms:
//   - unix timestamp (seconds): 1609459200
//   - RFC3339: 2006-01-02T15:04:05Z07:00
//   - date: 2006-01-02, 20060102
//   - relative: 5h-ago, 3d-ago, 1w-ago, 2m-ago, 1y-ago
//   - natural: now, today, yesterday, all (zero time)
func ParseSince(str string) (time.Time, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return time.Time{}, false
	}

	switch strings.ToLower(str) {
	case "now":
		return time.Now(), true
	case "today":
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case "yesterday":
		now := time.Now().AddDate(0, 0, -1)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case "all":
		return time.Time{}, true
	}

	if rel, ok := strings.CutSuffix(str, "-ago"); ok {
		return parseRelative(rel)
	}

	if isDigitsOnly(str) {
		switch len(str) {
		case 8:
			if t, err := time.ParseInLocation("20060102", str, time.Local); err == nil {
				return t, true
			}
			return time.Time{}, false
		default:
			if sec, err := strconv.ParseInt(str, 10, 64); err == nil {
				return time.Unix(sec, 0), true
			}
			return time.Time{}, false
		}
	}

	if t, err := time.Parse(time.RFC3339, str); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", str, time.Local); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// parseRelative handles the 5h / 3d / 1w / 2m / 1y part of "<n><unit>-ago".
func parseRelative(str string) (time.Time, bool) {
	if len(str) < 2 {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(str[:len(str)-1])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	now := time.Now()
	switch str[len(str)-1] {
	case 'h':
		return now.Add(-time.Duration(n) * time.Hour), true
	case 'd':
		return now.AddDate(0, 0, -n), true
	case 'w':
		return now.AddDate(0, 0, -7*n), true
	case 'm':
		return now.AddDate(0, -n, 0), true
	case 'y':
		return now.AddDate(-n, 0, 0), true
	default:
		return time.Time{}, false
	}
}

func isDigitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
