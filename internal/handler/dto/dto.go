// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/service"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrMalformedBody is returned when a request body is not the expected JSON.
var ErrMalformedBody = errors.New("malformed request body")

// UpdateFieldRequest is the body of POST /api/user/update/{field}.
type UpdateFieldRequest struct {
	Value *string `json:"value" validate:"required"`
}

// DeleteAccountRequest is the body of POST /api/user/delete.
type DeleteAccountRequest struct {
	Password *string `json:"password" validate:"required"`
}

// MiniSearchRequest is the body of the mini search endpoints.
type MiniSearchRequest struct {
	Query *string `json:"query" validate:"required"`
}

// Decode reads a JSON object from body into dst and validates it.
// A missing body, a non-object, a wrongly typed key or a missing required
// key all yield ErrMalformedBody.
func Decode(body io.Reader, dst any) error {
	if body == nil {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedBody)
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field '%s' is required", ErrMalformedBody, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// StatusResponse is the success envelope.
type StatusResponse struct {
	Status string `json:"status"`
}

// Success is the body returned by mutating endpoints.
var Success = StatusResponse{Status: "success"}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SearchResult is one mini search hit.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchResponse wraps mini search hits.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// ToSearchResponse converts search results, never producing a null list.
func ToSearchResponse(results []model.SearchResult) SearchResponse {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{ID: r.ID, Name: r.Name})
	}
	return SearchResponse{Results: out}
}

// MediaResponse represents a media item with its availability.
type MediaResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	MediaType       string    `json:"media_type"`
	AgeLimit        int       `json:"age_limit"`
	AuthorID        *int64    `json:"author_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	IsBorrowed      bool      `json:"is_borrowed"`
	EstimatedReturn string    `json:"estimated_return"`
}

// ToMediaResponse converts a media detail to its response DTO.
func ToMediaResponse(d *service.MediaDetail) MediaResponse {
	return MediaResponse{
		ID:              d.Media.ID,
		Title:           d.Media.Title,
		MediaType:       d.Media.MediaType,
		AgeLimit:        d.Media.AgeLimit,
		AuthorID:        d.Media.AuthorID,
		CreatedAt:       d.Media.CreatedAt,
		IsBorrowed:      d.IsBorrowed,
		EstimatedReturn: d.EstimatedReturn.Format(model.BirthdayLayout),
	}
}
