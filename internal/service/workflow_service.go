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
	"github.com/maheshrc27/postpilot/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// WorkflowService runs the scheduled-content pipeline: for every user whose
// schedule matches the current window, generate master content once, derive
// platform variants and publish them, then write the ledger row that keeps
// the slot from ever running twice.
type WorkflowService interface {
	Run(ctx context.Context) (*transfer.WorkflowRunSummary, error)
}

type workflowService struct {
	cfg    config.Config
	sr     repository.ScheduleRepository
	pr     repository.PostRepository
	ar     repository.SocialAccountRepository
	wr     repository.WorkflowRunRepository
	prof   repository.ProfileRepository
	gen    ContentGenerator
	img    ImageService
	pub    PublisherRegistry
	logger *PipelineLogger
	clock  Clock
}

func NewWorkflowService(
	cfg config.Config,
	sr repository.ScheduleRepository,
	pr repository.PostRepository,
	ar repository.SocialAccountRepository,
	wr repository.WorkflowRunRepository,
	prof repository.ProfileRepository,
	gen ContentGenerator,
	img ImageService,
	pub PublisherRegistry,
	logger *PipelineLogger,
	clock Clock) WorkflowService {
	return &workflowService{
		cfg:    cfg,
		sr:     sr,
		pr:     pr,
		ar:     ar,
		wr:     wr,
		prof:   prof,
		gen:    gen,
		img:    img,
		pub:    pub,
		logger: logger,
		clock:  clock,
	}
}

func (s *workflowService) Run(ctx context.Context) (*transfer.WorkflowRunSummary, error) {
	deadline := s.clock.Now().Add(s.cfg.RunBudget)

	configs, err := s.sr.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	runID, _ := gonanoid.New(8)
	slog.Info("workflow run started", "run_id", runID, "users", len(configs))

	summary := &transfer.WorkflowRunSummary{Results: []transfer.UserRunResult{}}
	for _, sc := range configs {
		if s.clock.Now().After(deadline) {
			slog.Info("run budget exceeded, leaving remaining users for the next tick", "run_id", runID)
			break
		}

		summary.Processed++
		result := s.runForUser(ctx, sc)
		if result.Status == transfer.UserRunNoMatch {
			continue
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

func (s *workflowService) runForUser(ctx context.Context, sc *models.ScheduleConfig) transfer.UserRunResult {
	now := s.clock.Now()
	result := transfer.UserRunResult{UserID: sc.UserID}

	match, err := MatchSchedule(sc, now)
	if err != nil {
		s.logger.Log(ctx, sc.UserID, "schedule_match", models.LogStatusWarning, err.Error(), nil)
		result.Status = transfer.UserRunFailed
		result.Error = err.Error()
		return result
	}
	result.TimeSlot = match.TimeSlot

	if !match.Matches {
		result.Status = transfer.UserRunNoMatch
		return result
	}

	alreadyRun, err := s.wr.Exists(ctx, sc.UserID, match.TimeSlot)
	if err != nil {
		result.Status = transfer.UserRunFailed
		result.Error = err.Error()
		return result
	}
	if alreadyRun {
		s.logger.Log(ctx, sc.UserID, "ledger_check", models.LogStatusSkipped, "slot already executed", map[string]any{"time_slot": match.TimeSlot})
		result.Status = transfer.UserRunSkipped
		return result
	}

	genResult, topic, imageURL, failErr := s.generateContent(ctx, sc, match)
	if failErr != nil {
		result.Status = transfer.UserRunFailed
		result.Error = failErr.Error()
		return result
	}

	accounts, err := s.eligibleAccounts(ctx, sc, match)
	if err != nil {
		s.logger.Log(ctx, sc.UserID, "accounts", models.LogStatusWarning, err.Error(), nil)
		result.Status = transfer.UserRunFailed
		result.Error = err.Error()
		return result
	}

	published := s.publishToAccounts(ctx, sc.UserID, accounts, genResult, topic, imageURL, now)

	status := models.RunStatusFailed
	if len(published) > 0 {
		status = models.RunStatusCompleted
	}

	run := &models.WorkflowRun{
		UserID:             sc.UserID,
		TimeSlot:           match.TimeSlot,
		Status:             status,
		PlatformsPublished: published,
	}
	if err := s.wr.Create(ctx, run); err != nil {
		s.logger.Log(ctx, sc.UserID, "ledger_record", models.LogStatusError, err.Error(), nil)
	}

	s.logger.Log(ctx, sc.UserID, "workflow", models.LogStatusCompleted, "cycle finished", map[string]any{
		"time_slot": match.TimeSlot,
		"status":    status,
		"platforms": published,
	})

	if status == models.RunStatusFailed {
		result.Status = transfer.UserRunFailed
		result.Error = "all publish attempts failed"
		return result
	}
	result.Status = transfer.UserRunCompleted
	return result
}

// generateContent selects a topic and calls the generation collaborator,
// returning the master content plus an optional image URL for this slot.
func (s *workflowService) generateContent(ctx context.Context, sc *models.ScheduleConfig, match MatchResult) (*transfer.GenerationResult, string, string, error) {
	profile, err := s.prof.GetByUserID(ctx, sc.UserID)
	if err != nil {
		return nil, "", "", err
	}
	if profile == nil {
		s.logger.Log(ctx, sc.UserID, "profile", models.LogStatusWarning, ErrNoProfileConfigured.Error(), nil)
		return nil, "", "", ErrNoProfileConfigured
	}

	recentPosts, err := s.pr.GetRecentByUserID(ctx, sc.UserID, 10)
	if err != nil {
		return nil, "", "", err
	}

	var recentTopics, recentBodies []string
	for _, p := range recentPosts {
		if p.Topic != "" && len(recentTopics) < recentTopicWindow {
			recentTopics = append(recentTopics, p.Topic)
		}
		recentBodies = append(recentBodies, p.Content)
	}

	topic, reason, err := SelectTopic(profile.Topics, recentTopics)
	if err != nil {
		s.logger.Log(ctx, sc.UserID, "topic_selection", models.LogStatusWarning, err.Error(), nil)
		return nil, "", "", err
	}
	s.logger.Log(ctx, sc.UserID, "topic_selection", models.LogStatusCompleted, reason, map[string]any{"topic": topic})

	genResult, err := s.gen.Generate(ctx, transfer.GenerationInput{
		Topic:       topic,
		Tone:        profile.Tone,
		RecentPosts: recentBodies,
	})
	if err != nil {
		s.logger.Log(ctx, sc.UserID, "generation", models.LogStatusError, err.Error(), map[string]any{"topic": topic})
		return nil, "", "", err
	}

	var imageURL string
	if sc.ImageGenerationEnabled && containsString(sc.ImageTimes, match.MatchedTime) {
		imageURL, err = s.img.GenerateImage(ctx, topic)
		if err != nil {
			s.logger.Log(ctx, sc.UserID, "image_generation", models.LogStatusWarning, err.Error(), nil)
			imageURL = ""
		}
	}

	return genResult, topic, imageURL, nil
}

// eligibleAccounts lists the user's active accounts, narrowed by the platform
// preferences configured for the matched time when any exist.
func (s *workflowService) eligibleAccounts(ctx context.Context, sc *models.ScheduleConfig, match MatchResult) ([]*models.SocialAccount, error) {
	accounts, err := s.ar.ListActiveByUserID(ctx, sc.UserID)
	if err != nil {
		return nil, err
	}

	if preferred := sc.PlatformPreferences[match.MatchedTime]; len(preferred) > 0 {
		var filtered []*models.SocialAccount
		for _, acc := range accounts {
			if containsString(preferred, acc.Platform) {
				filtered = append(filtered, acc)
			}
		}
		accounts = filtered
	}

	if len(accounts) == 0 {
		return nil, ErrNoActiveAccounts
	}
	return accounts, nil
}

// publishToAccounts attempts every account sequentially; one account failing
// never stops the others. Returns the platforms that succeeded.
func (s *workflowService) publishToAccounts(ctx context.Context, userID int64, accounts []*models.SocialAccount, gen *transfer.GenerationResult, topic, imageURL string, now time.Time) []string {
	var published []string

	for _, acc := range accounts {
		post := models.Post{
			UserID:    userID,
			AccountID: acc.ID,
			Platform:  acc.Platform,
			Status:    models.PostStatusFailed,
			Topic:     topic,
			Model:     gen.Model,
			Prompt:    gen.Prompt,
		}

		variant, err := TransformForPlatform(gen.Content, acc.Platform)
		if err != nil {
			s.logger.Log(ctx, userID, "transform", models.LogStatusError, err.Error(), map[string]any{"platform": acc.Platform})
			continue
		}
		post.Content = variant
		if imageURL != "" {
			post.ImageURL = sql.NullString{String: imageURL, Valid: true}
		}

		publishResult := s.publishOne(ctx, acc, variant, imageURL)
		if publishResult.Success {
			post.Status = models.PostStatusPublished
			post.PublishedAt = sql.NullTime{Time: now, Valid: true}
			if publishResult.PostID != "" {
				post.PlatformPostID = sql.NullString{String: publishResult.PostID, Valid: true}
			}
			published = append(published, acc.Platform)
			s.logger.Log(ctx, userID, "publish", models.LogStatusCompleted, "published", map[string]any{"platform": acc.Platform, "platform_post_id": publishResult.PostID})
		} else {
			s.logger.Log(ctx, userID, "publish", models.LogStatusError, publishResult.Error, map[string]any{"platform": acc.Platform})
		}

		if _, err := s.pr.Create(ctx, &post); err != nil {
			s.logger.Log(ctx, userID, "post_record", models.LogStatusError, err.Error(), map[string]any{"platform": acc.Platform})
		}
	}

	return published
}

func (s *workflowService) publishOne(ctx context.Context, acc *models.SocialAccount, content, imageURL string) *transfer.PublishResult {
	publisher, ok := s.pub[acc.Platform]
	if !ok {
		return &transfer.PublishResult{Success: false, Error: fmt.Sprintf("unsupported platform %q", acc.Platform)}
	}

	token, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return &transfer.PublishResult{Success: false, Error: "unable to decrypt access token"}
	}

	args := transfer.PublishArgs{
		AccessToken:    token,
		PlatformUserID: acc.AccountID,
		Content:        content,
		ImageURL:       imageURL,
	}
	if acc.TokenExpiresAt.Valid {
		expiresAt := acc.TokenExpiresAt.Time
		args.TokenExpiresAt = &expiresAt
	}

	result, err := publisher.Publish(ctx, args)
	if err != nil {
		return &transfer.PublishResult{Success: false, Error: err.Error()}
	}
	return result
}
