package model

import "time"

// Borrowing links a user to a media item they hold.
type Borrowing struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	MediaID    int64      `json:"media_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// IsActive reports whether the item has not been returned yet.
func (b *Borrowing) IsActive() bool {
	return b.ReturnedAt == nil
}

// BorrowingView is a borrowing joined with its media for listings.
type BorrowingView struct {
	Borrowing       Borrowing
	Media           Media
	EstimatedReturn time.Time
}
