package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	"github.com/librarydb/librarydb/internal/model"
)

// foreignKeyViolation is the PostgreSQL error code for foreign_key_violation.
const foreignKeyViolation = "23503"

// BorrowMedia records a borrowing if the media item is not actively borrowed.
// The availability check and the insert happen in one transaction holding a
// row lock on the media item; the partial unique index on active borrowings
// backs it up. Returns ErrMediaBorrowed when another borrowing won.
func (r *Repository) BorrowMedia(ctx context.Context, userID, mediaID int64, borrowedAt, dueAt time.Time) (*model.Borrowing, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin borrow transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var lockedID int64
	err = tx.QueryRow(ctx, `SELECT id FROM media WHERE id = $1 FOR UPDATE`, mediaID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to lock media: %w", err)
	}

	b := &model.Borrowing{
		ID:         ulid.Make().String(),
		UserID:     userID,
		MediaID:    mediaID,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
	}

	query := `
		INSERT INTO borrowings (id, user_id, media_id, borrowed_at, due_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (media_id) WHERE returned_at IS NULL DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, b.ID, b.UserID, b.MediaID, b.BorrowedAt, b.DueAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert borrowing: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrMediaBorrowed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit borrowing: %w", err)
	}

	return b, nil
}

// ListUserBorrowings returns the user's active borrowings joined with media,
// most recent first.
func (r *Repository) ListUserBorrowings(ctx context.Context, userID int64) ([]model.BorrowingView, error) {
	query := `
		SELECT b.id, b.user_id, b.media_id, b.borrowed_at, b.due_at, b.returned_at,
		       m.id, m.title, m.media_type, m.age_limit, m.author_id, m.created_at
		FROM borrowings b
		JOIN media m ON m.id = b.media_id
		WHERE b.user_id = $1 AND b.returned_at IS NULL
		ORDER BY b.borrowed_at DESC, b.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowings: %w", err)
	}
	defer rows.Close()

	views := make([]model.BorrowingView, 0)
	for rows.Next() {
		var v model.BorrowingView
		if err := rows.Scan(
			&v.Borrowing.ID,
			&v.Borrowing.UserID,
			&v.Borrowing.MediaID,
			&v.Borrowing.BorrowedAt,
			&v.Borrowing.DueAt,
			&v.Borrowing.ReturnedAt,
			&v.Media.ID,
			&v.Media.Title,
			&v.Media.MediaType,
			&v.Media.AgeLimit,
			&v.Media.AuthorID,
			&v.Media.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan borrowing: %w", err)
		}
		v.EstimatedReturn = v.Borrowing.DueAt
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrowings: %w", err)
	}

	return views, nil
}
