package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

// ImageRepository implements image.Repository
type ImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new image record repository
func NewImageRepository(db *sql.DB) image.Repository {
	return &ImageRepository{db: db}
}

// Create inserts a new record. ID and CreatedAt are assigned here.
func (r *ImageRepository) Create(ctx context.Context, img *image.Image) error {
	defer func(start time.Time) { metrics.RecordDBQuery("insert", "images", time.Since(start)) }(time.Now())

	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	img.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO images (id, user_id, original_url, upscaled_url, scale, file_size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.UserID, img.OriginalURL, img.UpscaledURL, img.Scale, img.FileSizeBytes,
		img.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to save image record", err)
	}
	return nil
}

// ListByUser returns a page of a user's records, newest first, and the total count
func (r *ImageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*image.Image, int64, error) {
	defer func(start time.Time) { metrics.RecordDBQuery("select", "images", time.Since(start)) }(time.Now())

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count images", err)
	}

	query := `
		SELECT id, user_id, original_url, upscaled_url, scale, file_size_bytes, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list images", err)
	}
	defer rows.Close()

	var images []*image.Image
	for rows.Next() {
		var img image.Image
		var size sql.NullInt64
		var createdAt int64

		if err := rows.Scan(&img.ID, &img.UserID, &img.OriginalURL, &img.UpscaledURL, &img.Scale, &size, &createdAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan image", err)
		}
		if size.Valid {
			v := size.Int64
			img.FileSizeBytes = &v
		}
		img.CreatedAt = millis(createdAt)
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate images", err)
	}

	return images, total, nil
}

// Count returns the total number of records
func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&total); err != nil {
		return 0, errors.DatabaseError("Failed to count images", err)
	}
	return total, nil
}
