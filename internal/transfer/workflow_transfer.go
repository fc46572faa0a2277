package transfer

import "time"

const (
	UserRunNoMatch   = "no_match"
	UserRunSkipped   = "skipped"
	UserRunCompleted = "completed"
	UserRunFailed    = "failed"
)

type UserRunResult struct {
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	TimeSlot string `json:"time_slot,omitempty"`
	Error    string `json:"error,omitempty"`
}

type WorkflowRunSummary struct {
	Processed int             `json:"processed"`
	Results   []UserRunResult `json:"results"`
}

type DispatchSummary struct {
	Published int       `json:"published"`
	Failed    int       `json:"failed"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}
