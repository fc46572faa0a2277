package service

import (
	"context"

	"github.com/maheshrc27/postpilot/internal/transfer"
)

// Publisher posts one piece of content to one platform. Implementations take
// the PublishArgs record only; credentials arrive decrypted.
type Publisher interface {
	Publish(ctx context.Context, args transfer.PublishArgs) (*transfer.PublishResult, error)
}

// PublisherRegistry maps a platform identifier to its publisher.
type PublisherRegistry map[string]Publisher

func NewPublisherRegistry() PublisherRegistry {
	return PublisherRegistry{
		PlatformTwitter:  NewTwitterPublisher(),
		PlatformLinkedIn: NewLinkedInPublisher(),
		PlatformFacebook: NewFacebookPublisher(),
	}
}
