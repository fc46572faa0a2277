package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/service"
)

// PublishJob is the cron entry for Trigger B: drain due scheduled posts.
type PublishJob struct {
	ds service.DispatcherService
}

func NewPublishJob(ds service.DispatcherService) *PublishJob {
	return &PublishJob{ds: ds}
}

func (j *PublishJob) Run() {
	ctx := context.Background()

	summary, err := j.ds.Run(ctx)
	if err != nil {
		slog.Error(err.Error())
		return
	}

	if summary.Published > 0 || summary.Failed > 0 {
		slog.Info("publish drain finished", "published", summary.Published, "failed", summary.Failed)
	}
}

// StuckPostSweep reclaims posts abandoned in the publishing state, e.g. after
// a crash between claim and completion.
type StuckPostSweep struct {
	ds service.DispatcherService
}

func NewStuckPostSweep(ds service.DispatcherService) *StuckPostSweep {
	return &StuckPostSweep{ds: ds}
}

func (j *StuckPostSweep) Run() {
	ctx := context.Background()

	reclaimed, err := j.ds.ReclaimStuck(ctx)
	if err != nil {
		slog.Error(err.Error())
		return
	}

	if reclaimed > 0 {
		slog.Info("reclaimed stuck posts", "count", reclaimed)
	}
}
