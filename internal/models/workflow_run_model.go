package models

import (
	"time"

	"github.com/lib/pq"
)

// WorkflowRun is the idempotency ledger row for one executed schedule slot.
// Rows are append-only and never updated; the unique (user_id, time_slot) key
// is what makes slot execution exactly-once.
type WorkflowRun struct {
	ID                 int64          `db:"id" json:"id"`
	UserID             int64          `db:"user_id" json:"user_id"`
	TimeSlot           string         `db:"time_slot" json:"time_slot"` // "YYYY-MM-DD HH:MM"
	Status             string         `db:"status" json:"status"`       // completed, failed
	PlatformsPublished pq.StringArray `db:"platforms_published" json:"platforms_published"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
