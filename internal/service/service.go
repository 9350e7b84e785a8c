// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/model"
)

// Service errors. Handlers map these to HTTP statuses.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// UserStore is the user persistence the services need.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserField(ctx context.Context, userID int64, update model.FieldUpdate) error
	DeleteUser(ctx context.Context, userID int64) error
}

// MediaStore reads catalog items and their availability.
type MediaStore interface {
	GetMedia(ctx context.Context, id int64) (*model.Media, error)
	IsMediaBorrowed(ctx context.Context, mediaID int64) (bool, error)
	EstimateReturnDate(ctx context.Context, mediaID int64, now time.Time) (time.Time, error)
}

// BorrowStore records and lists borrowings.
type BorrowStore interface {
	BorrowMedia(ctx context.Context, userID, mediaID int64, borrowedAt, dueAt time.Time) (*model.Borrowing, error)
	ListUserBorrowings(ctx context.Context, userID int64) ([]model.BorrowingView, error)
}

// SearchStore runs the mini search queries.
type SearchStore interface {
	SearchAuthors(ctx context.Context, q string, limit int) ([]model.SearchResult, error)
	SearchMedia(ctx context.Context, q string, limit int) ([]model.SearchResult, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	Get(ctx context.Context, token string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, token string) error
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// hashPassword hashes a new password, reporting an over-long one as invalid input.
func hashPassword(plaintext string) (string, error) {
	hash, err := auth.HashPassword(plaintext)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}
	return hash, nil
}
