package service

import (
	"sort"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// NextRunTime computes the next strictly-future instant a deferred post
// should publish at, from the user's schedule. Without a usable frequency or
// time list it degrades to now+24h.
func NextRunTime(cfg *models.ScheduleConfig, now time.Time) time.Time {
	fallback := now.Add(24 * time.Hour)

	if cfg == nil || cfg.Frequency == "" || len(cfg.Times) == 0 {
		return fallback
	}

	local, err := ResolveCivil(now, cfg.Timezone)
	if err != nil {
		return fallback
	}

	minutes := sortedClockMinutes(cfg.Times)
	if len(minutes) == 0 {
		return fallback
	}

	var next time.Time
	switch cfg.Frequency {
	case models.FrequencyDaily:
		next = nextOnOrAfterDay(local, local, minutes)
		if next.IsZero() {
			next = firstOnDay(local.AddDate(0, 0, 1), minutes)
		}

	case models.FrequencyWeekly:
		for offset := 0; offset <= 7; offset++ {
			day := local.AddDate(0, 0, offset)
			if !dayAllowed(cfg.DaysOfWeek, day) {
				continue
			}
			if candidate := nextOnOrAfterDay(local, day, minutes); !candidate.IsZero() {
				next = candidate
				break
			}
		}

	case models.FrequencyMonthly:
		next = nextOnOrAfterDay(local, local, minutes)
		if next.IsZero() {
			next = firstOnDay(local.AddDate(0, 1, 0), minutes)
		}

	default:
		return fallback
	}

	if next.IsZero() || !next.After(now) {
		return fallback
	}
	return next
}

// nextOnOrAfterDay returns the earliest configured time on day that is
// strictly after now, or the zero time when the day has none left.
func nextOnOrAfterDay(now, day time.Time, minutes []int) time.Time {
	for _, m := range minutes {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	return time.Time{}
}

func firstOnDay(day time.Time, minutes []int) time.Time {
	m := minutes[0]
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}

func sortedClockMinutes(times []string) []int {
	var minutes []int
	for _, t := range times {
		m, err := parseClock(t)
		if err != nil {
			continue
		}
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)
	return minutes
}

func dayAllowed(daysOfWeek []string, day time.Time) bool {
	if len(daysOfWeek) == 0 {
		return true
	}
	return containsString(daysOfWeek, strings.ToLower(day.Weekday().String()))
}
