package service

import (
	"fmt"
	"time"
)

// Clock abstracts wall-clock access so schedule matching can be tested
// against fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ResolveCivil converts an instant to the user's civil time. An empty zone
// name means UTC; an unknown zone is a configuration error for that user.
func ResolveCivil(t time.Time, timezone string) (time.Time, error) {
	if timezone == "" {
		return t.UTC(), nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return t.In(loc), nil
}
