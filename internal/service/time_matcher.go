package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// MatchWindowMinutes is the trailing window after each configured time during
// which the slot counts as due. It equals the trigger interval, so every slot
// is seen by exactly one tick. A slot whose window would cross midnight is
// never matched; the window is clipped at the day boundary.
const MatchWindowMinutes = 5

type MatchResult struct {
	Matches     bool
	MatchedTime string
	TimeSlot    string
}

// MatchSchedule reports whether now falls inside the trailing window of one of
// the configured posting times, in the config's own timezone. The returned
// TimeSlot is the canonical ledger key: civil date plus the matched "HH:MM"
// (or the current "HH:MM" when nothing matched).
func MatchSchedule(cfg *models.ScheduleConfig, now time.Time) (MatchResult, error) {
	local, err := ResolveCivil(now, cfg.Timezone)
	if err != nil {
		return MatchResult{}, err
	}

	civilDate := local.Format("2006-01-02")
	currentClock := local.Format("15:04")
	noMatch := MatchResult{TimeSlot: civilDate + " " + currentClock}

	if len(cfg.DaysOfWeek) > 0 {
		weekday := strings.ToLower(local.Weekday().String())
		if !containsString(cfg.DaysOfWeek, weekday) {
			return noMatch, nil
		}
	}

	nowMinute := local.Hour()*60 + local.Minute()
	for _, t := range cfg.Times {
		scheduled, err := parseClock(t)
		if err != nil {
			return MatchResult{}, err
		}

		diff := nowMinute - scheduled
		if diff >= 0 && diff < MatchWindowMinutes {
			return MatchResult{
				Matches:     true,
				MatchedTime: t,
				TimeSlot:    civilDate + " " + t,
			}, nil
		}
	}

	return noMatch, nil
}

// parseClock converts an "HH:MM" string to minute-of-day.
func parseClock(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return hour*60 + minute, nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
