package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/librarydb/librarydb/internal/metrics"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

// DefaultBorrowPeriod is the loan period when none is configured.
const DefaultBorrowPeriod = 14 * 24 * time.Hour

// BorrowService handles the borrow workflow.
type BorrowService struct {
	users   UserStore
	media   MediaStore
	borrows BorrowStore
	period  time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewBorrowService creates a new BorrowService.
func NewBorrowService(users UserStore, media MediaStore, borrows BorrowStore, period time.Duration, recorder metrics.Recorder, logger *slog.Logger) *BorrowService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if period <= 0 {
		period = DefaultBorrowPeriod
	}
	return &BorrowService{
		users:   users,
		media:   media,
		borrows: borrows,
		period:  period,
		metrics: recorder,
		logger:  loggerOrDefault(logger),
		now:     time.Now,
	}
}

// Borrow lends a media item to the identified user.
//
// Checks run in order: identity, media existence, availability, age limit.
// The final insert is conditional, so a concurrent borrow of the same item
// surfaces as ErrConflict rather than a second active borrowing.
func (s *BorrowService) Borrow(ctx context.Context, id *model.Identity, mediaID int64) (*model.Borrowing, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveBorrowDuration(time.Since(start))
	}()

	if id == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: load user: %v", ErrInternal, err)
	}

	media, err := s.media.GetMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			s.metrics.IncBorrowRejected("not_found")
			return nil, fmt.Errorf("%w: media %d does not exist", ErrNotFound, mediaID)
		}
		return nil, s.borrowFailed(fmt.Errorf("load media: %w", err))
	}

	borrowed, err := s.media.IsMediaBorrowed(ctx, mediaID)
	if err != nil {
		return nil, s.borrowFailed(err)
	}
	if borrowed {
		s.metrics.IncBorrowRejected("borrowed")
		return nil, fmt.Errorf("%w: media is already borrowed", ErrConflict)
	}

	now := s.now()
	age, err := user.Age(now)
	if err != nil {
		return nil, s.borrowFailed(fmt.Errorf("user %d has a malformed birthday: %w", user.ID, err))
	}
	if age < media.AgeLimit {
		s.metrics.IncBorrowRejected("age")
		return nil, fmt.Errorf("%w: media requires age %d", ErrForbidden, media.AgeLimit)
	}

	b, err := s.borrows.BorrowMedia(ctx, user.ID, mediaID, now, now.Add(s.period))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMediaBorrowed):
			s.metrics.IncBorrowRejected("borrowed")
			return nil, fmt.Errorf("%w: media is already borrowed", ErrConflict)
		case errors.Is(err, repository.ErrMediaNotFound):
			s.metrics.IncBorrowRejected("not_found")
			return nil, fmt.Errorf("%w: media %d does not exist", ErrNotFound, mediaID)
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUnauthorized
		}
		return nil, s.borrowFailed(err)
	}

	s.metrics.IncBorrowCreated()
	s.logger.InfoContext(ctx, "borrow_created",
		slog.String("borrowing_id", b.ID),
		slog.Int64("user_id", b.UserID),
		slog.Int64("media_id", b.MediaID),
		slog.Time("due_at", b.DueAt),
	)

	return b, nil
}

// ActiveBorrowings lists the user's borrowings that are not yet returned.
func (s *BorrowService) ActiveBorrowings(ctx context.Context, id *model.Identity) ([]model.BorrowingView, error) {
	if id == nil {
		return nil, ErrUnauthorized
	}

	views, err := s.borrows.ListUserBorrowings(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: list borrowings: %v", ErrInternal, err)
	}
	return views, nil
}

func (s *BorrowService) borrowFailed(err error) error {
	s.metrics.IncBorrowRejected("error")
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
