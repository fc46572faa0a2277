package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/service"
)

// WorkflowJob is the cron entry for Trigger A: one pass over all users'
// schedules every five minutes.
type WorkflowJob struct {
	ws service.WorkflowService
}

func NewWorkflowJob(ws service.WorkflowService) *WorkflowJob {
	return &WorkflowJob{ws: ws}
}

func (j *WorkflowJob) Run() {
	ctx := context.Background()

	summary, err := j.ws.Run(ctx)
	if err != nil {
		slog.Error(err.Error())
		return
	}

	slog.Info("workflow run finished", "processed", summary.Processed, "results", len(summary.Results))
}
