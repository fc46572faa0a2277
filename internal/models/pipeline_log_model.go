package models

import "time"

type PipelineLog struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Step      string    `db:"step" json:"step"`
	Status    string    `db:"status" json:"status"`
	Message   string    `db:"message" json:"message"`
	Metadata  []byte    `db:"metadata" json:"metadata"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	LogStatusStarted   = "started"
	LogStatusCompleted = "completed"
	LogStatusSkipped   = "skipped"
	LogStatusWarning   = "warning"
	LogStatusError     = "error"
)
