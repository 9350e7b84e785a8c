package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/librarydb/librarydb/internal/model"
)

// Common errors for media repository operations.
var (
	ErrMediaNotFound = errors.New("media not found")
	ErrMediaBorrowed = errors.New("media is already borrowed")
)

// GetMedia retrieves a media item by its ID.
func (r *Repository) GetMedia(ctx context.Context, id int64) (*model.Media, error) {
	query := `
		SELECT id, title, media_type, age_limit, author_id, created_at
		FROM media
		WHERE id = $1
	`

	var m model.Media
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.MediaType,
		&m.AgeLimit,
		&m.AuthorID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return &m, nil
}

// IsMediaBorrowed reports whether the media item has an active borrowing.
func (r *Repository) IsMediaBorrowed(ctx context.Context, mediaID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM borrowings WHERE media_id = $1 AND returned_at IS NULL
		)
	`

	var borrowed bool
	if err := r.pool.QueryRow(ctx, query, mediaID).Scan(&borrowed); err != nil {
		return false, fmt.Errorf("failed to check borrow status: %w", err)
	}

	return borrowed, nil
}

// EstimateReturnDate returns when the media item is expected back:
// the due date of its active borrowing, or now when it is available.
func (r *Repository) EstimateReturnDate(ctx context.Context, mediaID int64, now time.Time) (time.Time, error) {
	query := `
		SELECT due_at FROM borrowings
		WHERE media_id = $1 AND returned_at IS NULL
	`

	var due time.Time
	err := r.pool.QueryRow(ctx, query, mediaID).Scan(&due)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return now, nil
		}
		return time.Time{}, fmt.Errorf("failed to estimate return date: %w", err)
	}

	return due, nil
}
