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

// PanelHandler serves the signed-in HTML pages under /me.
type PanelHandler struct {
	account AccountManager
	borrow  Borrower
	views   *view.Renderer
	logger  *slog.Logger
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(account AccountManager, borrow Borrower, views *view.Renderer, logger *slog.Logger) *PanelHandler {
	return &PanelHandler{
		account: account,
		borrow:  borrow,
		views:   views,
		logger:  logger,
	}
}

// Home handles GET /.
func (h *PanelHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageHome, view.PageVars(r))
}

// Me handles GET /me.
func (h *PanelHandler) Me(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/me/profile", http.StatusFound)
}

// Profile handles GET /me/profile.
func (h *PanelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.account.Profile(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageProfile, view.PageVars(r).With(view.Data{"user": user}))
}

// Borrowings handles GET /me/borrowings.
func (h *PanelHandler) Borrowings(w http.ResponseWriter, r *http.Request) {
	views, err := h.borrow.ActiveBorrowings(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageBorrowings, view.PageVars(r).With(view.Data{"borrowings": views}))
}

// Delete handles POST /me/delete with a form field "password".
func (h *PanelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if _, ok := r.PostForm["password"]; !ok {
		http.Error(w, "Password is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	err := h.account.Delete(ctx, auth.SessionFromContext(ctx), auth.IdentityFromContext(ctx), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			http.Error(w, "Incorrect password", http.StatusUnauthorized)
			return
		}
		h.pageError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// pageError reports a service error on an HTML route.
func (h *PanelHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrUnauthorized) {
		http.Redirect(w, r, middleware.LoginURL(r.URL.Path), http.StatusFound)
		return
	}

	h.logger.ErrorContext(r.Context(), "page_error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *PanelHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data view.Data) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.pageError(w, r, err)
	}
}
