package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

const postColumns = `id, user_id, account_id, platform, content, status, scheduled_for, published_at, platform_post_id, topic, model, prompt, image_url, created_at, updated_at`

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetRecentByUserID(ctx context.Context, userID int64, limit int) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	ClaimForPublishing(ctx context.Context, postID int64) (bool, error)
	MarkPublished(ctx context.Context, postID int64, platformPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, postID int64) error
	ReclaimStuck(ctx context.Context, cutoff time.Time) (int64, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, account_id, platform, content, status, scheduled_for, published_at, platform_post_id, topic, model, prompt, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.AccountID, post.Platform, post.Content, post.Status,
		post.ScheduledFor, post.PublishedAt, post.PlatformPostID,
		post.Topic, post.Model, post.Prompt, post.ImageURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.Post
	err := scanPost(row.Scan, &post)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) GetRecentByUserID(ctx context.Context, userID int64, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2 ORDER BY scheduled_for ASC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ClaimForPublishing is the only entry into the publishing state. The
// conditional update succeeds for exactly one caller when invocations
// overlap; everyone else sees zero rows affected.
func (r *postRepository) ClaimForPublishing(ctx context.Context, postID int64) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusPublishing, time.Now(), postID, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) MarkPublished(ctx context.Context, postID int64, platformPostID string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1, platform_post_id = $2, published_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, platformPostID, publishedAt, time.Now(), postID, models.PostStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, time.Now(), postID, models.PostStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ReclaimStuck moves posts abandoned in publishing (claimed, then the process
// died before completing the publish call) back to scheduled so a later drain
// can pick them up.
func (r *postRepository) ReclaimStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE status = $3 AND updated_at < $4
	`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, time.Now(), models.PostStatusPublishing, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return res.RowsAffected()
}

func scanPost(scan func(dest ...any) error, post *models.Post) error {
	return scan(&post.ID, &post.UserID, &post.AccountID, &post.Platform, &post.Content,
		&post.Status, &post.ScheduledFor, &post.PublishedAt, &post.PlatformPostID,
		&post.Topic, &post.Model, &post.Prompt, &post.ImageURL, &post.CreatedAt, &post.UpdatedAt)
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows.Scan, &post); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}
