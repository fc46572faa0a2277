package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

// DispatcherService drains posts whose scheduled_for has arrived. Overlapping
// invocations are safe: the conditional claim on each row is the only guard,
// so duplicate cron ticks and asynq deliveries publish each post once.
type DispatcherService interface {
	Run(ctx context.Context) (*transfer.DispatchSummary, error)
	PublishOne(ctx context.Context, postID int64) error
	ReclaimStuck(ctx context.Context) (int64, error)
}

type dispatcherService struct {
	cfg    config.Config
	pr     repository.PostRepository
	ar     repository.SocialAccountRepository
	pub    PublisherRegistry
	logger *PipelineLogger
	clock  Clock
}

func NewDispatcherService(
	cfg config.Config,
	pr repository.PostRepository,
	ar repository.SocialAccountRepository,
	pub PublisherRegistry,
	logger *PipelineLogger,
	clock Clock) DispatcherService {
	return &dispatcherService{
		cfg:    cfg,
		pr:     pr,
		ar:     ar,
		pub:    pub,
		logger: logger,
		clock:  clock,
	}
}

func (s *dispatcherService) Run(ctx context.Context) (*transfer.DispatchSummary, error) {
	now := s.clock.Now()
	deadline := now.Add(s.cfg.RunBudget)

	due, err := s.pr.ListDue(ctx, now, s.cfg.DispatchBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due posts: %w", err)
	}

	summary := &transfer.DispatchSummary{Errors: []string{}, Timestamp: now}
	for _, post := range due {
		if s.clock.Now().After(deadline) {
			slog.Info("run budget exceeded, leaving remaining posts for the next tick")
			break
		}

		outcome, err := s.dispatch(ctx, post)
		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("post %d: %v", post.ID, err))
		case outcome == dispatchPublished:
			summary.Published++
		}
	}

	return summary, nil
}

// PublishOne is the asynq-delivery entry point. It loads the post and runs it
// through the same claim-then-publish path as the periodic drain.
func (s *dispatcherService) PublishOne(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusScheduled {
		return nil
	}

	_, err = s.dispatch(ctx, post)
	return err
}

// ReclaimStuck returns posts abandoned mid-publish to the scheduled state so
// a later drain retries them.
func (s *dispatcherService) ReclaimStuck(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.cfg.ClaimTimeout)
	return s.pr.ReclaimStuck(ctx, cutoff)
}

type dispatchOutcome int

const (
	dispatchSkipped dispatchOutcome = iota
	dispatchPublished
)

func (s *dispatcherService) dispatch(ctx context.Context, post *models.Post) (dispatchOutcome, error) {
	claimed, err := s.pr.ClaimForPublishing(ctx, post.ID)
	if err != nil {
		return dispatchSkipped, err
	}
	if !claimed {
		// Another worker owns this post.
		return dispatchSkipped, nil
	}

	account, err := s.ar.GetByID(ctx, post.AccountID)
	if err != nil {
		s.failPost(ctx, post, err.Error())
		return dispatchSkipped, err
	}
	if account == nil {
		err := fmt.Errorf("account %d not found", post.AccountID)
		s.failPost(ctx, post, err.Error())
		return dispatchSkipped, err
	}

	if account.TokenExpiresAt.Valid && account.TokenExpiresAt.Time.Before(s.clock.Now()) {
		err := fmt.Errorf("credential for account %d expired at %s", account.ID, account.TokenExpiresAt.Time.Format("2006-01-02 15:04"))
		s.failPost(ctx, post, err.Error())
		return dispatchSkipped, err
	}

	publisher, ok := s.pub[post.Platform]
	if !ok {
		err := fmt.Errorf("unsupported platform %q", post.Platform)
		s.failPost(ctx, post, err.Error())
		return dispatchSkipped, err
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		s.failPost(ctx, post, "unable to decrypt access token")
		return dispatchSkipped, fmt.Errorf("unable to decrypt access token for account %d", account.ID)
	}

	args := transfer.PublishArgs{
		AccessToken:    token,
		PlatformUserID: account.AccountID,
		Content:        post.Content,
	}
	if post.ImageURL.Valid {
		args.ImageURL = post.ImageURL.String
	}
	if account.TokenExpiresAt.Valid {
		expiresAt := account.TokenExpiresAt.Time
		args.TokenExpiresAt = &expiresAt
	}

	result, err := publisher.Publish(ctx, args)
	if err != nil {
		s.failPost(ctx, post, err.Error())
		return dispatchSkipped, err
	}
	if !result.Success {
		s.failPost(ctx, post, result.Error)
		return dispatchSkipped, fmt.Errorf("publish rejected: %s", result.Error)
	}

	publishedAt := s.clock.Now()
	if err := s.pr.MarkPublished(ctx, post.ID, result.PostID, publishedAt); err != nil {
		return dispatchSkipped, err
	}

	s.logger.Log(ctx, post.UserID, "dispatch", models.LogStatusCompleted, "scheduled post published", map[string]any{
		"post_id":          post.ID,
		"platform":         post.Platform,
		"platform_post_id": result.PostID,
	})
	return dispatchPublished, nil
}

func (s *dispatcherService) failPost(ctx context.Context, post *models.Post, reason string) {
	if err := s.pr.MarkFailed(ctx, post.ID); err != nil {
		slog.Info(err.Error())
	}
	s.logger.Log(ctx, post.UserID, "dispatch", models.LogStatusError, reason, map[string]any{
		"post_id":  post.ID,
		"platform": post.Platform,
	})
}
