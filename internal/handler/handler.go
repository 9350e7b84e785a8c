// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/librarydb/librarydb/internal/handler/dto"
	"github.com/librarydb/librarydb/internal/middleware"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/service"
)

// Borrower runs the borrow workflow.
type Borrower interface {
	Borrow(ctx context.Context, id *model.Identity, mediaID int64) (*model.Borrowing, error)
	ActiveBorrowings(ctx context.Context, id *model.Identity) ([]model.BorrowingView, error)
}

// AccountManager reads and changes the caller's account.
type AccountManager interface {
	Profile(ctx context.Context, id *model.Identity) (*model.User, error)
	UpdateField(ctx context.Context, sess *model.Session, id *model.Identity, update model.FieldUpdate) error
	Delete(ctx context.Context, sess *model.Session, id *model.Identity, password string) error
}

// Searcher runs the mini searches.
type Searcher interface {
	Authors(ctx context.Context, query string) ([]model.SearchResult, error)
	Media(ctx context.Context, query string) ([]model.SearchResult, error)
}

// MediaReader loads catalog items.
type MediaReader interface {
	Detail(ctx context.Context, mediaID int64) (*service.MediaDetail, error)
}

// SessionManager owns login state and preferences.
type SessionManager interface {
	Login(ctx context.Context, current *model.Session, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sess *model.Session) error
	ToggleDarkMode(ctx context.Context, sess *model.Session) (*model.Session, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Set writes the session cookie for token, replacing any session cookie
// already queued on w.
func (c CookieConfig) Set(w http.ResponseWriter, token string) {
	h := w.Header()
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, c.Name+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// errorKind is how a service error is reported to clients.
type errorKind struct {
	err     error
	status  int
	code    string
	message string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{dto.ErrMalformedBody, http.StatusBadRequest, "UNPROCESSABLE", "Request body must be JSON with the required key"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{service.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", "Invalid input"},
	{service.ErrConflict, http.StatusConflict, "CONFLICT", "Conflict"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Not found"},
}

// classify maps err to a status, code and client-safe message.
// Anything unrecognised is an internal error whose detail is not echoed.
func classify(err error) (status int, code, message string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code, clientMessage(err, k)
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred"
}

// clientMessage prefers the wrapped detail ("conflict: email is already in
// use") over the generic text of a bare sentinel. Decode failures always get
// the generic text since their detail comes from encoding/json.
func clientMessage(err error, k errorKind) string {
	if err == k.err || k.err == dto.ErrMalformedBody {
		return k.message
	}
	return err.Error()
}

// handleServiceError maps service errors to JSON responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "internal_error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	writeError(w, status, code, message)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
