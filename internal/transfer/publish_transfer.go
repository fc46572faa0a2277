package transfer

import "time"

// PublishArgs is the one argument record every platform publisher accepts.
type PublishArgs struct {
	AccessToken    string
	PlatformUserID string
	Content        string
	ImageURL       string
	TokenExpiresAt *time.Time
}

type PublishResult struct {
	Success bool
	PostID  string
	Error   string
}
