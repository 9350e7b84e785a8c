package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/librarydb/librarydb/internal/cache"
	"github.com/librarydb/librarydb/internal/handler/dto"
	"github.com/librarydb/librarydb/internal/middleware"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
	"github.com/librarydb/librarydb/internal/service"
	"github.com/librarydb/librarydb/internal/view"
)

const testCookie = "librarydb_session"

var (
	memberToken    = strings.Repeat("a", 64)
	anonToken      = strings.Repeat("b", 64)
	staleToken     = strings.Repeat("c", 64)
	testMemberHash = "$argon2id$member"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBorrower struct {
	mu       sync.Mutex
	err      error
	calls    []int64
	caller   *model.Identity
	listErr  error
	borrowed []model.BorrowingView
}

func (f *fakeBorrower) Borrow(ctx context.Context, id *model.Identity, mediaID int64) (*model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mediaID)
	f.caller = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Borrowing{MediaID: mediaID, UserID: id.UserID}, nil
}

func (f *fakeBorrower) ActiveBorrowings(ctx context.Context, id *model.Identity) ([]model.BorrowingView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.borrowed, nil
}

type fakeAccount struct {
	mu        sync.Mutex
	user      *model.User
	profErr   error
	updateErr error
	deleteErr error
	updates   []model.FieldUpdate
	passwords []string
}

func (f *fakeAccount) Profile(ctx context.Context, id *model.Identity) (*model.User, error) {
	if f.profErr != nil {
		return nil, f.profErr
	}
	return f.user, nil
}

func (f *fakeAccount) UpdateField(ctx context.Context, sess *model.Session, id *model.Identity, update model.FieldUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return f.updateErr
}

func (f *fakeAccount) Delete(ctx context.Context, sess *model.Session, id *model.Identity, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords = append(f.passwords, password)
	return f.deleteErr
}

type fakeSearcher struct {
	authors []model.SearchResult
	media   []model.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Authors(ctx context.Context, q string) ([]model.SearchResult, error) {
	f.queries = append(f.queries, q)
	return f.authors, f.err
}

func (f *fakeSearcher) Media(ctx context.Context, q string) ([]model.SearchResult, error) {
	f.queries = append(f.queries, q)
	return f.media, f.err
}

type fakeMediaReader struct {
	detail *service.MediaDetail
	err    error
}

func (f *fakeMediaReader) Detail(ctx context.Context, mediaID int64) (*service.MediaDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

type fakeSessionManager struct {
	loginErr  error
	logoutErr error
	newToken  string
	logouts   int
	toggled   []*model.Session
	lastEmail string
}

func (f *fakeSessionManager) Login(ctx context.Context, current *model.Session, email, password string) (*model.Session, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.Session{Token: f.newToken, Email: email, PasswordHash: testMemberHash}, nil
}

func (f *fakeSessionManager) Logout(ctx context.Context, sess *model.Session) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeSessionManager) ToggleDarkMode(ctx context.Context, sess *model.Session) (*model.Session, error) {
	f.toggled = append(f.toggled, sess)
	if sess == nil {
		return &model.Session{Token: f.newToken, DarkMode: true}, nil
	}
	sess.DarkMode = !sess.DarkMode
	return sess, nil
}

// fakeSessionStore backs the session middleware.
type fakeSessionStore map[string]*model.Session

func (f fakeSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	sess, ok := f[token]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

type fakeUserLookup map[string]*model.User

func (f fakeUserLookup) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// testApp bundles the router with the fakes behind it.
type testApp struct {
	router   http.Handler
	borrow   *fakeBorrower
	account  *fakeAccount
	search   *fakeSearcher
	media    *fakeMediaReader
	sessions *fakeSessionManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	views, err := view.New()
	if err != nil {
		t.Fatalf("view.New() error = %v", err)
	}

	app := &testApp{
		borrow: &fakeBorrower{},
		account: &fakeAccount{user: &model.User{
			ID:       7,
			Name:     "Ada",
			Surname:  "Lovelace",
			Email:    "ada@example.com",
			Birthday: "1990-12-10",
			UserType: model.UserTypeMember,
		}},
		search:   &fakeSearcher{},
		media:    &fakeMediaReader{},
		sessions: &fakeSessionManager{newToken: strings.Repeat("d", 64)},
	}

	logger := testLogger()
	store := fakeSessionStore{
		memberToken: {Token: memberToken, Email: "ada@example.com", PasswordHash: testMemberHash},
		anonToken:   {Token: anonToken, DarkMode: true},
		staleToken:  {Token: staleToken, Email: "ada@example.com", PasswordHash: "$argon2id$old"},
	}
	users := fakeUserLookup{
		"ada@example.com": {ID: 7, Email: "ada@example.com", PasswordHash: testMemberHash},
	}

	cookie := CookieConfig{Name: testCookie, TTL: time.Hour}
	app.router = NewRouter(RouterConfig{
		Logger:   logger,
		Security: middleware.DefaultSecurityConfig(),
		Session: middleware.Session(middleware.SessionConfig{
			Logger:     logger,
			Sessions:   store,
			Users:      users,
			CookieName: testCookie,
			Refresh:    cookie.Set,
		}),
		API:      NewAPIHandler(app.borrow, app.account, app.search, app.media, logger),
		Panel:    NewPanelHandler(app.account, app.borrow, views, logger),
		Sessions: NewSessionHandler(app.sessions, views, cookie, logger),
		Health:   NewHealthHandler(nil, nil, logger),
	})
	return app
}

// do sends a request through the router, optionally carrying a session cookie.
func (a *testApp) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// decodeError reads a JSON error body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}
