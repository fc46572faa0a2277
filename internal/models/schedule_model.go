package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// PlatformPreferences maps a configured posting time ("HH:MM") to the set of
// platforms that time should publish to. Stored as jsonb.
type PlatformPreferences map[string][]string

func (p PlatformPreferences) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *PlatformPreferences) Scan(src interface{}) error {
	if src == nil {
		*p = PlatformPreferences{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("platform_preferences: unsupported scan type")
	}
	return json.Unmarshal(b, p)
}

type ScheduleConfig struct {
	ID                     int64               `db:"id" json:"id"`
	UserID                 int64               `db:"user_id" json:"user_id"`
	DaysOfWeek             pq.StringArray      `db:"days_of_week" json:"days_of_week"` // empty = all days
	Times                  pq.StringArray      `db:"times" json:"times"`               // "HH:MM", 24h
	Frequency              string              `db:"frequency" json:"frequency"`       // daily, weekly, monthly
	Timezone               string              `db:"timezone" json:"timezone"`         // IANA name, empty = UTC
	ImageGenerationEnabled bool                `db:"image_generation_enabled" json:"image_generation_enabled"`
	ImageTimes             pq.StringArray      `db:"image_times" json:"image_times"`
	PlatformPreferences    PlatformPreferences `db:"platform_preferences" json:"platform_preferences"`
	CreatedAt              time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at" json:"updated_at"`
}

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)
