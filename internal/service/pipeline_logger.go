package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

// PipelineLogger writes the append-only audit trail of pipeline steps.
// Writes are best-effort: a failed log write never fails the pipeline.
type PipelineLogger struct {
	pl repository.PipelineLogRepository
}

func NewPipelineLogger(pl repository.PipelineLogRepository) *PipelineLogger {
	return &PipelineLogger{pl: pl}
}

func (l *PipelineLogger) Log(ctx context.Context, userID int64, step, status, message string, metadata map[string]any) {
	var meta []byte
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			slog.Info(err.Error())
		} else {
			meta = encoded
		}
	}

	entry := &models.PipelineLog{
		UserID:   userID,
		Step:     step,
		Status:   status,
		Message:  message,
		Metadata: meta,
	}

	if _, err := l.pl.Create(ctx, entry); err != nil {
		slog.Info(err.Error())
	}
}
