package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// PostService is the deferred-generation path: content is generated
// immediately but stored as scheduled posts that the dispatcher publishes
// when their time arrives.
type PostService interface {
	CreateScheduled(ctx context.Context, userID int64) ([]int64, time.Duration, error)
	List(ctx context.Context, userID int64, limit int) ([]*models.Post, error)
	NextRun(ctx context.Context, userID int64) (time.Time, error)
}

type postService struct {
	cfg   config.Config
	sr    repository.ScheduleRepository
	pr    repository.PostRepository
	ar    repository.SocialAccountRepository
	prof  repository.ProfileRepository
	gen   ContentGenerator
	clock Clock
}

func NewPostService(
	cfg config.Config,
	sr repository.ScheduleRepository,
	pr repository.PostRepository,
	ar repository.SocialAccountRepository,
	prof repository.ProfileRepository,
	gen ContentGenerator,
	clock Clock) PostService {
	return &postService{
		cfg:   cfg,
		sr:    sr,
		pr:    pr,
		ar:    ar,
		prof:  prof,
		gen:   gen,
		clock: clock,
	}
}

func (s *postService) CreateScheduled(ctx context.Context, userID int64) ([]int64, time.Duration, error) {
	sc, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if sc == nil {
		slog.Info(ErrNoScheduleConfigured.Error())
		return nil, 0, ErrNoScheduleConfigured
	}

	now := s.clock.Now()
	runAt := NextRunTime(sc, now)

	profile, err := s.prof.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if profile == nil {
		slog.Info(ErrNoProfileConfigured.Error())
		return nil, 0, ErrNoProfileConfigured
	}

	recentPosts, err := s.pr.GetRecentByUserID(ctx, userID, 10)
	if err != nil {
		return nil, 0, err
	}

	var recentTopics, recentBodies []string
	for _, p := range recentPosts {
		if p.Topic != "" && len(recentTopics) < recentTopicWindow {
			recentTopics = append(recentTopics, p.Topic)
		}
		recentBodies = append(recentBodies, p.Content)
	}

	topic, _, err := SelectTopic(profile.Topics, recentTopics)
	if err != nil {
		return nil, 0, err
	}

	genResult, err := s.gen.Generate(ctx, transfer.GenerationInput{
		Topic:       topic,
		Tone:        profile.Tone,
		RecentPosts: recentBodies,
	})
	if err != nil {
		return nil, 0, err
	}

	accounts, err := s.ar.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if len(accounts) == 0 {
		slog.Info(ErrNoActiveAccounts.Error())
		return nil, 0, ErrNoActiveAccounts
	}

	var ids []int64
	for _, acc := range accounts {
		variant, err := TransformForPlatform(genResult.Content, acc.Platform)
		if err != nil {
			return nil, 0, fmt.Errorf("error transforming content for %s: %w", acc.Platform, err)
		}

		post := models.Post{
			UserID:       userID,
			AccountID:    acc.ID,
			Platform:     acc.Platform,
			Content:      variant,
			Status:       models.PostStatusScheduled,
			ScheduledFor: sql.NullTime{Time: runAt, Valid: true},
			Topic:        topic,
			Model:        genResult.Model,
			Prompt:       genResult.Prompt,
		}

		id, err := s.pr.Create(ctx, &post)
		if err != nil {
			return nil, 0, fmt.Errorf("error creating post: %w", err)
		}
		ids = append(ids, id)
	}

	delay := runAt.Sub(now)
	if delay < 0 {
		delay = 0
	}
	return ids, delay, nil
}

func (s *postService) List(ctx context.Context, userID int64, limit int) ([]*models.Post, error) {
	posts, err := s.pr.GetRecentByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) NextRun(ctx context.Context, userID int64) (time.Time, error) {
	sc, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return NextRunTime(sc, s.clock.Now()), nil
}
