package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcherFixture struct {
	svc      DispatcherService
	posts    *fakePostRepo
	accounts *fakeAccountRepo
	pub      *fakePublisher
	now      time.Time
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	cfg := config.Config{
		SecretKey:          testSecretKey,
		RunBudget:          time.Minute,
		DispatchBatchLimit: 50,
		ClaimTimeout:       15 * time.Minute,
	}

	f := &dispatcherFixture{
		posts: newFakePostRepo(),
		pub:   &fakePublisher{result: &transfer.PublishResult{Success: true, PostID: "tw-9"}},
		now:   mondayAt(12, 0),
	}
	f.accounts = &fakeAccountRepo{accounts: []*models.SocialAccount{{
		ID:            10,
		UserID:        1,
		Platform:      PlatformTwitter,
		AccountID:     "tw-user",
		AccessToken:   encryptedToken(t),
		AccountStatus: models.AccountStatusActive,
	}}}

	registry := PublisherRegistry{PlatformTwitter: f.pub}
	f.svc = NewDispatcherService(cfg, f.posts, f.accounts, registry,
		NewPipelineLogger(&fakeLogRepo{}), fixedClock{f.now})
	return f
}

func (f *dispatcherFixture) seedPost(t *testing.T, status string, scheduledFor time.Time) int64 {
	t.Helper()
	id, err := f.posts.Create(context.Background(), &models.Post{
		UserID:       1,
		AccountID:    10,
		Platform:     PlatformTwitter,
		Content:      "Scheduled thoughts on build systems.",
		Status:       status,
		ScheduledFor: sql.NullTime{Time: scheduledFor, Valid: true},
	})
	require.NoError(t, err)
	return id
}

func TestDispatcherPublishesDuePosts(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	id := f.seedPost(t, models.PostStatusScheduled, f.now.Add(-time.Hour))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Published)
	assert.Zero(t, summary.Failed)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, "tw-9", post.PlatformPostID.String)
	assert.Equal(t, f.now, post.PublishedAt.Time)
}

func TestDispatcherLeavesFuturePosts(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	id := f.seedPost(t, models.PostStatusScheduled, f.now.Add(time.Hour))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.Published)
	assert.Zero(t, f.pub.callCount())

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
}

func TestDispatcherConcurrentDeliveriesPublishOnce(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	id := f.seedPost(t, models.PostStatusScheduled, f.now.Add(-time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// The loser of the claim race sees a silent no-op.
			assert.NoError(t, f.svc.PublishOne(context.Background(), id))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.pub.callCount())

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
}

func TestDispatcherExpiredCredentialFailsBeforePublish(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	f.accounts.accounts[0].TokenExpiresAt = sql.NullTime{Time: f.now.Add(-time.Hour), Valid: true}
	id := f.seedPost(t, models.PostStatusScheduled, f.now.Add(-time.Minute))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "expired")
	assert.Zero(t, f.pub.callCount())

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, post.Status)
}

func TestDispatcherPublishRejectionMarksFailed(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	f.pub.result = &transfer.PublishResult{Success: false, Error: "duplicate content"}
	id := f.seedPost(t, models.PostStatusScheduled, f.now.Add(-time.Minute))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)

	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, post.Status)
}

func TestDispatcherUnsupportedPlatformMarksFailed(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)
	f.accounts.accounts[0].Platform = "myspace"
	id, err := f.posts.Create(context.Background(), &models.Post{
		UserID:       1,
		AccountID:    10,
		Platform:     "myspace",
		Content:      "hello",
		Status:       models.PostStatusScheduled,
		ScheduledFor: sql.NullTime{Time: f.now.Add(-time.Minute), Valid: true},
	})
	require.NoError(t, err)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, post.Status)
}

func TestDispatcherPublishOneIgnoresNonScheduled(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)

	for _, status := range []string{models.PostStatusDraft, models.PostStatusPublishing, models.PostStatusPublished, models.PostStatusFailed} {
		id := f.seedPost(t, status, f.now.Add(-time.Minute))
		require.NoError(t, f.svc.PublishOne(context.Background(), id))
	}

	require.NoError(t, f.svc.PublishOne(context.Background(), 9999)) // missing post
	assert.Zero(t, f.pub.callCount())
}

func TestDispatcherReclaimStuck(t *testing.T) {
	t.Parallel()
	f := newDispatcherFixture(t)

	stuck, err := f.posts.Create(context.Background(), &models.Post{
		UserID:    1,
		AccountID: 10,
		Platform:  PlatformTwitter,
		Status:    models.PostStatusPublishing,
		UpdatedAt: f.now.Add(-time.Hour),
	})
	require.NoError(t, err)

	fresh, err := f.posts.Create(context.Background(), &models.Post{
		UserID:    1,
		AccountID: 10,
		Platform:  PlatformTwitter,
		Status:    models.PostStatusPublishing,
		UpdatedAt: f.now.Add(-time.Minute),
	})
	require.NoError(t, err)

	reclaimed, err := f.svc.ReclaimStuck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclaimed)

	stuckPost, err := f.posts.GetByID(context.Background(), stuck)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, stuckPost.Status)

	freshPost, err := f.posts.GetByID(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublishing, freshPost.Status)
}
