package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

// MediaDetail is a catalog item with its current availability.
type MediaDetail struct {
	Media           *model.Media
	IsBorrowed      bool
	EstimatedReturn time.Time
}

// MediaService reads catalog items.
type MediaService struct {
	media MediaStore
	now   func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(media MediaStore) *MediaService {
	return &MediaService{media: media, now: time.Now}
}

// Detail returns the media item with its borrow state and expected return.
func (s *MediaService) Detail(ctx context.Context, mediaID int64) (*MediaDetail, error) {
	m, err := s.media.GetMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return nil, fmt.Errorf("%w: media %d does not exist", ErrNotFound, mediaID)
		}
		return nil, fmt.Errorf("%w: load media: %v", ErrInternal, err)
	}

	borrowed, err := s.media.IsMediaBorrowed(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	estimate, err := s.media.EstimateReturnDate(ctx, mediaID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &MediaDetail{Media: m, IsBorrowed: borrowed, EstimatedReturn: estimate}, nil
}
