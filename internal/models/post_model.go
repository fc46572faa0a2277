package models

import (
	"database/sql"
	"time"
)

type Post struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	AccountID      int64          `db:"account_id" json:"account_id"`
	Platform       string         `db:"platform" json:"platform"`
	Content        string         `db:"content" json:"content"`
	Status         string         `db:"status" json:"status"` // draft, scheduled, publishing, published, failed
	ScheduledFor   sql.NullTime   `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt    sql.NullTime   `db:"published_at" json:"published_at"`
	PlatformPostID sql.NullString `db:"platform_post_id" json:"platform_post_id"`
	Topic          string         `db:"topic" json:"topic"`
	Model          string         `db:"model" json:"model"`
	Prompt         string         `db:"prompt" json:"prompt"`
	ImageURL       sql.NullString `db:"image_url" json:"image_url"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)
