package service

import (
	"context"
	"errors"
	"testing"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func encryptedToken(t *testing.T) string {
	t.Helper()
	token, err := utils.Encrypt([]byte("access-token"), []byte(testSecretKey))
	require.NoError(t, err)
	return token
}

type workflowFixture struct {
	svc      WorkflowService
	gen      *fakeGenerator
	twitter  *fakePublisher
	linkedin *fakePublisher
	runs     *fakeRunRepo
	posts    *fakePostRepo
	accounts *fakeAccountRepo
	profile  *fakeProfileRepo
	sched    *fakeScheduleRepo
}

func newWorkflowFixture(t *testing.T, now time.Time) *workflowFixture {
	t.Helper()

	cfg := config.Config{SecretKey: testSecretKey, RunBudget: time.Minute}

	f := &workflowFixture{
		gen: &fakeGenerator{result: &transfer.GenerationResult{
			Content: "Fresh take on developer tooling. Worth a read.",
			Prompt:  "write a post",
			Model:   "gpt-4o-mini",
		}},
		twitter:  &fakePublisher{result: &transfer.PublishResult{Success: true, PostID: "tw-1"}},
		linkedin: &fakePublisher{result: &transfer.PublishResult{Success: true, PostID: "li-1"}},
		runs:     newFakeRunRepo(),
		posts:    newFakePostRepo(),
		profile:  &fakeProfileRepo{profile: &models.Profile{UserID: 1, Tone: "casual", Topics: []string{"AI", "DevTools"}}},
	}

	f.sched = &fakeScheduleRepo{configs: []*models.ScheduleConfig{{
		UserID: 1,
		Times:  []string{"09:00"},
	}}}

	f.accounts = &fakeAccountRepo{accounts: []*models.SocialAccount{{
		ID:            10,
		UserID:        1,
		Platform:      PlatformTwitter,
		AccountID:     "tw-user",
		AccessToken:   encryptedToken(t),
		AccountStatus: models.AccountStatusActive,
	}}}

	registry := PublisherRegistry{
		PlatformTwitter:  f.twitter,
		PlatformLinkedIn: f.linkedin,
	}

	f.svc = NewWorkflowService(cfg, f.sched, f.posts, f.accounts, f.runs, f.profile,
		f.gen, &fakeImageService{}, registry, NewPipelineLogger(&fakeLogRepo{}), fixedClock{now})
	return f
}

func TestWorkflowRunCompletes(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunCompleted, summary.Results[0].Status)
	assert.Equal(t, "2024-01-01 09:00", summary.Results[0].TimeSlot)

	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, 1, f.twitter.callCount())

	recorded, err := f.runs.Exists(context.Background(), 1, "2024-01-01 09:00")
	require.NoError(t, err)
	assert.True(t, recorded)

	post, err := f.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, "tw-1", post.PlatformPostID.String)
	assert.Equal(t, PlatformTwitter, post.Platform)
}

func TestWorkflowSkipsWhenSlotAlreadyRan(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))

	require.NoError(t, f.runs.Create(context.Background(), &models.WorkflowRun{
		UserID:   1,
		TimeSlot: "2024-01-01 09:00",
		Status:   models.RunStatusCompleted,
	}))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunSkipped, summary.Results[0].Status)
	assert.Zero(t, f.gen.calls)
	assert.Zero(t, f.twitter.callCount())
}

func TestWorkflowNoMatchOutsideWindow(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 30))

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Empty(t, summary.Results)
	assert.Zero(t, f.gen.calls)
}

func TestWorkflowAllPublishesFailedStillConsumesSlot(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.twitter.result = &transfer.PublishResult{Success: false, Error: "rate limited"}

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunFailed, summary.Results[0].Status)

	// The ledger row is written even though nothing published, so the slot
	// cannot retry until its next natural occurrence.
	recorded, err := f.runs.Exists(context.Background(), 1, "2024-01-01 09:00")
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, models.RunStatusFailed, f.runs.runs["1|2024-01-01 09:00"].Status)
	assert.Empty(t, f.runs.runs["1|2024-01-01 09:00"].PlatformsPublished)

	// A second invocation inside the same window is a no-op.
	summary, err = f.svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunSkipped, summary.Results[0].Status)
	assert.Equal(t, 1, f.gen.calls)
}

func TestWorkflowOneAccountFailingDoesNotStopOthers(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.twitter.result = &transfer.PublishResult{Success: false, Error: "boom"}
	f.accounts.accounts = append(f.accounts.accounts, &models.SocialAccount{
		ID:            11,
		UserID:        1,
		Platform:      PlatformLinkedIn,
		AccountID:     "li-user",
		AccessToken:   encryptedToken(t),
		AccountStatus: models.AccountStatusActive,
	})

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunCompleted, summary.Results[0].Status)
	assert.Equal(t, 1, f.twitter.callCount())
	assert.Equal(t, 1, f.linkedin.callCount())

	run := f.runs.runs["1|2024-01-01 09:00"]
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, []string{PlatformLinkedIn}, []string(run.PlatformsPublished))
}

func TestWorkflowNoActiveAccounts(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.accounts.accounts = nil

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunFailed, summary.Results[0].Status)
	assert.Equal(t, ErrNoActiveAccounts.Error(), summary.Results[0].Error)

	// Short-circuits happen before any publish attempt, so no ledger row is
	// written and the slot can still run once accounts exist.
	recorded, err := f.runs.Exists(context.Background(), 1, "2024-01-01 09:00")
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestWorkflowGenerationFailure(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.gen.err = errors.New("provider unavailable")

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunFailed, summary.Results[0].Status)
	assert.Zero(t, f.twitter.callCount())
}

func TestWorkflowPlatformPreferencesFilterAccounts(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.sched.configs[0].PlatformPreferences = models.PlatformPreferences{
		"09:00": {PlatformLinkedIn},
	}
	f.accounts.accounts = append(f.accounts.accounts, &models.SocialAccount{
		ID:            11,
		UserID:        1,
		Platform:      PlatformLinkedIn,
		AccountID:     "li-user",
		AccessToken:   encryptedToken(t),
		AccountStatus: models.AccountStatusActive,
	})

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, transfer.UserRunCompleted, summary.Results[0].Status)
	assert.Zero(t, f.twitter.callCount())
	assert.Equal(t, 1, f.linkedin.callCount())
}

func TestWorkflowVariantsRespectCeilings(t *testing.T) {
	t.Parallel()
	f := newWorkflowFixture(t, mondayAt(9, 2))
	f.gen.result.Content = longMasterContent()

	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, f.twitter.callCount())
	assert.LessOrEqual(t, len([]rune(f.twitter.calls[0].Content)), CeilingFor(PlatformTwitter))
}

func longMasterContent() string {
	out := ""
	for i := 0; i < 60; i++ {
		out += "Another thought about shipping software. "
	}
	return out
}
