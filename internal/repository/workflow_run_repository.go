package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/postpilot/internal/models"
)

type WorkflowRunRepository interface {
	Exists(ctx context.Context, userID int64, timeSlot string) (bool, error)
	Create(ctx context.Context, run *models.WorkflowRun) error
}

type workflowRunRepository struct {
	db *sql.DB
}

func NewWorkflowRunRepository(db *sql.DB) WorkflowRunRepository {
	return &workflowRunRepository{db: db}
}

func (r *workflowRunRepository) Exists(ctx context.Context, userID int64, timeSlot string) (bool, error) {
	query := `SELECT 1 FROM workflow_runs WHERE user_id = $1 AND time_slot = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, userID, timeSlot).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// Create inserts the ledger row for a slot. A duplicate insert for the same
// (user_id, time_slot) is silently ignored; the row written first wins and is
// never overwritten.
func (r *workflowRunRepository) Create(ctx context.Context, run *models.WorkflowRun) error {
	query := `
		INSERT INTO workflow_runs (user_id, time_slot, status, platforms_published)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, time_slot) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, run.UserID, run.TimeSlot, run.Status, run.PlatformsPublished)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil
		}
		slog.Info(err.Error())
		return err
	}

	return nil
}
