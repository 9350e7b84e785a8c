package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/handler/dto"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/service"
)

// APIHandler handles the JSON API.
type APIHandler struct {
	borrow  Borrower
	account AccountManager
	search  Searcher
	media   MediaReader
	logger  *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(borrow Borrower, account AccountManager, search Searcher, media MediaReader, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		borrow:  borrow,
		account: account,
		search:  search,
		media:   media,
		logger:  logger,
	}
}

// Borrow handles POST /api/user/borrow/{mediaID}.
func (h *APIHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	mediaID, err := mediaIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNPROCESSABLE", err.Error())
		return
	}

	if _, err := h.borrow.Borrow(r.Context(), auth.IdentityFromContext(r.Context()), mediaID); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success)
}

// UpdateField handles POST /api/user/update/{field}.
func (h *APIHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateFieldRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	update, err := model.NewFieldUpdate(chi.URLParam(r, "field"), *req.Value)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown field")
		return
	}

	ctx := r.Context()
	err = h.account.UpdateField(ctx, auth.SessionFromContext(ctx), auth.IdentityFromContext(ctx), update)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success)
}

// DeleteAccount handles POST /api/user/delete.
func (h *APIHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteAccountRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	ctx := r.Context()
	err := h.account.Delete(ctx, auth.SessionFromContext(ctx), auth.IdentityFromContext(ctx), *req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success)
}

// SearchAuthors handles POST /api/mini_search/author.
func (h *APIHandler) SearchAuthors(w http.ResponseWriter, r *http.Request) {
	h.miniSearch(w, r, h.search.Authors)
}

// SearchMedia handles POST /api/mini_search/media.
func (h *APIHandler) SearchMedia(w http.ResponseWriter, r *http.Request) {
	h.miniSearch(w, r, h.search.Media)
}

func (h *APIHandler) miniSearch(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, q string) ([]model.SearchResult, error)) {
	var req dto.MiniSearchRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	results, err := run(r.Context(), *req.Query)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSearchResponse(results))
}

// MediaDetail handles GET /api/media/{mediaID}.
func (h *APIHandler) MediaDetail(w http.ResponseWriter, r *http.Request) {
	mediaID, err := mediaIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNPROCESSABLE", err.Error())
		return
	}

	detail, err := h.media.Detail(r.Context(), mediaID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMediaResponse(detail))
}

var errBadMediaID = errors.New("media id must be a positive integer")

func mediaIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "mediaID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadMediaID, raw)
	}
	return id, nil
}

var (
	_ Borrower       = (*service.BorrowService)(nil)
	_ AccountManager = (*service.AccountService)(nil)
	_ Searcher       = (*service.SearchService)(nil)
	_ MediaReader    = (*service.MediaService)(nil)
	_ SessionManager = (*service.AuthService)(nil)
)
