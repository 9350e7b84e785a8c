package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/middleware"
	"github.com/librarydb/librarydb/internal/service"
	"github.com/librarydb/librarydb/internal/view"
)

// SessionHandler handles login, logout and the dark mode toggle.
type SessionHandler struct {
	sessions SessionManager
	views    *view.Renderer
	cookie   CookieConfig
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionManager, views *view.Renderer, cookie CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		views:    views,
		cookie:   cookie,
		logger:   logger,
	}
}

// LoginForm handles GET /auth/login.
func (h *SessionHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeRedirectTarget(r.URL.Query().Get("next"))
	h.renderLogin(w, r, http.StatusOK, view.Data{"next": next})
}

// Login handles POST /auth/login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	email := r.PostForm.Get("email")
	next := r.PostForm.Get("next")

	ctx := r.Context()
	sess, err := h.sessions.Login(ctx, auth.SessionFromContext(ctx), email, r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			h.renderLogin(w, r, http.StatusUnauthorized, view.Data{
				"next":       middleware.SafeRedirectTarget(next),
				"form_email": email,
				"error":      "Invalid email or password",
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.cookie.Set(w, sess.Token)

	target := "/me/profile"
	if middleware.IsLocalPath(next) && next != "/" {
		target = next
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout handles GET /auth/logout.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), auth.SessionFromContext(r.Context())); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// DarkMode handles GET /darkmode?ref=<path>.
// Only local paths are honoured as the return target.
func (h *SessionHandler) DarkMode(w http.ResponseWriter, r *http.Request) {
	current := auth.SessionFromContext(r.Context())

	sess, err := h.sessions.ToggleDarkMode(r.Context(), current)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if current == nil {
		h.cookie.Set(w, sess.Token)
	}

	http.Redirect(w, r, middleware.SafeRedirectTarget(r.URL.Query().Get("ref")), http.StatusFound)
}

func (h *SessionHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, extra view.Data) {
	if err := h.views.Render(w, status, view.PageLogin, view.PageVars(r).With(extra)); err != nil {
		h.serverError(w, r, err)
	}
}

func (h *SessionHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "session_error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
