package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeScheduleRepo struct {
	configs []*models.ScheduleConfig
}

func (r *fakeScheduleRepo) GetByUserID(ctx context.Context, userID int64) (*models.ScheduleConfig, error) {
	for _, sc := range r.configs {
		if sc.UserID == userID {
			return sc, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) ListAll(ctx context.Context) ([]*models.ScheduleConfig, error) {
	return r.configs, nil
}

type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*models.Post{}}
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *post
	copied.ID = r.nextID
	r.posts[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakePostRepo) GetRecentByUserID(ctx context.Context, userID int64, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []*models.Post
	for id := r.nextID; id > 0 && len(posts) < limit; id-- {
		if post, ok := r.posts[id]; ok && post.UserID == userID {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*models.Post
	for id := int64(1); id <= r.nextID && len(due) < limit; id++ {
		post, ok := r.posts[id]
		if !ok {
			continue
		}
		if post.Status == models.PostStatusScheduled && post.ScheduledFor.Valid && !post.ScheduledFor.Time.After(now) {
			copied := *post
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *fakePostRepo) ClaimForPublishing(ctx context.Context, postID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.Status != models.PostStatusScheduled {
		return false, nil
	}
	post.Status = models.PostStatusPublishing
	post.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakePostRepo) MarkPublished(ctx context.Context, postID int64, platformPostID string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	post.Status = models.PostStatusPublished
	post.PlatformPostID.String = platformPostID
	post.PlatformPostID.Valid = platformPostID != ""
	post.PublishedAt.Time = publishedAt
	post.PublishedAt.Valid = true
	return nil
}

func (r *fakePostRepo) MarkFailed(ctx context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	post.Status = models.PostStatusFailed
	return nil
}

func (r *fakePostRepo) ReclaimStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reclaimed int64
	for _, post := range r.posts {
		if post.Status == models.PostStatusPublishing && post.UpdatedAt.Before(cutoff) {
			post.Status = models.PostStatusScheduled
			reclaimed++
		}
	}
	return reclaimed, nil
}

type fakeAccountRepo struct {
	accounts []*models.SocialAccount
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var active []*models.SocialAccount
	for _, acc := range r.accounts {
		if acc.UserID == userID && acc.AccountStatus == models.AccountStatusActive {
			active = append(active, acc)
		}
	}
	return active, nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]*models.WorkflowRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: map[string]*models.WorkflowRun{}}
}

func (r *fakeRunRepo) key(userID int64, timeSlot string) string {
	return fmt.Sprintf("%d|%s", userID, timeSlot)
}

func (r *fakeRunRepo) Exists(ctx context.Context, userID int64, timeSlot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.runs[r.key(userID, timeSlot)]
	return ok, nil
}

func (r *fakeRunRepo) Create(ctx context.Context, run *models.WorkflowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(run.UserID, run.TimeSlot)
	if _, ok := r.runs[k]; ok {
		return nil
	}
	r.runs[k] = run
	return nil
}

type fakeProfileRepo struct {
	profile *models.Profile
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return r.profile, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.PipelineLog
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *models.PipelineLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return int64(len(r.entries)), nil
}

func (r *fakeLogRepo) GetByUserID(ctx context.Context, userID int64, limit int) ([]*models.PipelineLog, error) {
	return r.entries, nil
}

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	result *transfer.GenerationResult
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, input transfer.GenerationInput) (*transfer.GenerationResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type fakeImageService struct {
	url string
	err error
}

func (s *fakeImageService) GenerateImage(ctx context.Context, topic string) (string, error) {
	return s.url, s.err
}

type fakePublisher struct {
	mu     sync.Mutex
	calls  []transfer.PublishArgs
	result *transfer.PublishResult
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, args transfer.PublishArgs) (*transfer.PublishResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, args)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
