package scorer

import (
	"strings"
	"time"
)

// Seasons follow the southern hemisphere calendar.
var seasonsByMonth = map[time.Month][]string{
	time.December:  {"summer"},
	time.January:   {"summer"},
	time.February:  {"summer", "late-summer"},
	time.March:     {"autumn", "fall"},
	time.April:     {"autumn", "fall"},
	time.May:       {"autumn", "fall"},
	time.June:      {"winter"},
	time.July:      {"winter"},
	time.August:    {"winter"},
	time.September: {"spring"},
	time.October:   {"spring"},
	time.November:  {"spring", "early-summer"},
}

// SeasonsOf returns the season tags that match a month.
func SeasonsOf(m time.Month) []string {
	s := seasonsByMonth[m]
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
