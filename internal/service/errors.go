package service

import "errors"

// Configuration errors skip a single user's cycle and never abort the batch.
var (
	ErrNoScheduleConfigured = errors.New("no schedule configured")
	ErrNoActiveAccounts     = errors.New("no active social accounts")
	ErrNoProfileConfigured  = errors.New("no profile configured")
)
