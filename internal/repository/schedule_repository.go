package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

const scheduleColumns = `id, user_id, days_of_week, times, frequency, timezone, image_generation_enabled, image_times, platform_preferences, created_at, updated_at`

type ScheduleRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ScheduleConfig, error)
	ListAll(ctx context.Context) ([]*models.ScheduleConfig, error)
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) GetByUserID(ctx context.Context, userID int64) (*models.ScheduleConfig, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_configs WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var sc models.ScheduleConfig
	err := row.Scan(&sc.ID, &sc.UserID, &sc.DaysOfWeek, &sc.Times, &sc.Frequency, &sc.Timezone,
		&sc.ImageGenerationEnabled, &sc.ImageTimes, &sc.PlatformPreferences, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sc, nil
}

func (r *scheduleRepository) ListAll(ctx context.Context) ([]*models.ScheduleConfig, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_configs ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var configs []*models.ScheduleConfig
	for rows.Next() {
		var sc models.ScheduleConfig
		err := rows.Scan(&sc.ID, &sc.UserID, &sc.DaysOfWeek, &sc.Times, &sc.Frequency, &sc.Timezone,
			&sc.ImageGenerationEnabled, &sc.ImageTimes, &sc.PlatformPreferences, &sc.CreatedAt, &sc.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		configs = append(configs, &sc)
	}
	return configs, rows.Err()
}
