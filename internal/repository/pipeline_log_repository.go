package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PipelineLogRepository interface {
	Create(ctx context.Context, entry *models.PipelineLog) (int64, error)
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*models.PipelineLog, error)
}

type pipelineLogRepository struct {
	db *sql.DB
}

func NewPipelineLogRepository(db *sql.DB) PipelineLogRepository {
	return &pipelineLogRepository{db: db}
}

func (r *pipelineLogRepository) Create(ctx context.Context, entry *models.PipelineLog) (int64, error) {
	query := `
		INSERT INTO pipeline_logs (user_id, step, status, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.Step, entry.Status, entry.Message, metadata).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *pipelineLogRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*models.PipelineLog, error) {
	query := `SELECT id, user_id, step, status, message, metadata, created_at FROM pipeline_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PipelineLog
	for rows.Next() {
		var entry models.PipelineLog
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Step, &entry.Status, &entry.Message, &entry.Metadata, &entry.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
