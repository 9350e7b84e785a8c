package model

import "time"

// Media represents a borrowable catalog item.
type Media struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	MediaType string    `json:"media_type"`
	AgeLimit  int       `json:"age_limit"`
	AuthorID  *int64    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Author is a media creator. Only used for lookups.
type Author struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// SearchResult is a lightweight match returned by mini search.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
