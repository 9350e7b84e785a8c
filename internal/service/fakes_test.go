package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]*model.User
	nextID int64
	err    error

	updates []model.FieldUpdate
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int64]*model.User), nextID: 100}
	for _, u := range users {
		cp := *u
		f.byID[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) UpdateUserField(_ context.Context, userID int64, update model.FieldUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	f.updates = append(f.updates, update)
	switch v := update.(type) {
	case model.NameUpdate:
		u.Name = v.Value
	case model.SurnameUpdate:
		u.Surname = v.Value
	case model.EmailUpdate:
		for id, other := range f.byID {
			if id != userID && other.Email == v.Value {
				return repository.ErrEmailExists
			}
		}
		u.Email = v.Value
	case model.PasswordUpdate:
		u.PasswordHash = v.Hash
	case model.BirthdayUpdate:
		u.Birthday = v.Value
	}
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[userID]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, userID)
	return nil
}

func (f *fakeUsers) get(id int64) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type fakeCatalog struct {
	mu      sync.Mutex
	media   map[int64]*model.Media
	active  map[int64]*model.Borrowing
	userOf  map[int64]int64
	nextSeq int

	borrowErr error
	// racer, when set, takes the item between the availability check and the insert.
	racer bool
}

func newFakeCatalog(media ...*model.Media) *fakeCatalog {
	f := &fakeCatalog{
		media:  make(map[int64]*model.Media),
		active: make(map[int64]*model.Borrowing),
		userOf: make(map[int64]int64),
	}
	for _, m := range media {
		f.media[m.ID] = m
	}
	return f
}

func (f *fakeCatalog) GetMedia(_ context.Context, id int64) (*model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[id]
	if !ok {
		return nil, repository.ErrMediaNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeCatalog) IsMediaBorrowed(_ context.Context, mediaID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[mediaID]
	return ok, nil
}

func (f *fakeCatalog) EstimateReturnDate(_ context.Context, mediaID int64, now time.Time) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.active[mediaID]; ok {
		return b.DueAt, nil
	}
	return now, nil
}

func (f *fakeCatalog) BorrowMedia(_ context.Context, userID, mediaID int64, borrowedAt, dueAt time.Time) (*model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.borrowErr != nil {
		return nil, f.borrowErr
	}
	if f.racer {
		return nil, repository.ErrMediaBorrowed
	}
	if _, ok := f.media[mediaID]; !ok {
		return nil, repository.ErrMediaNotFound
	}
	if _, ok := f.active[mediaID]; ok {
		return nil, repository.ErrMediaBorrowed
	}
	f.nextSeq++
	b := &model.Borrowing{
		ID:         fmt.Sprintf("b%d", f.nextSeq),
		UserID:     userID,
		MediaID:    mediaID,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
	}
	f.active[mediaID] = b
	f.userOf[mediaID] = userID
	return b, nil
}

func (f *fakeCatalog) ListUserBorrowings(_ context.Context, userID int64) ([]model.BorrowingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var views []model.BorrowingView
	for mediaID, b := range f.active {
		if b.UserID != userID {
			continue
		}
		views = append(views, model.BorrowingView{
			Borrowing:       *b,
			Media:           *f.media[mediaID],
			EstimatedReturn: b.DueAt,
		})
	}
	return views, nil
}

func (f *fakeCatalog) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

type fakeSessions struct {
	mu      sync.Mutex
	byToken map[string]model.Session
	saveErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: make(map[string]model.Session)}
}

func (f *fakeSessions) Get(_ context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byToken[token]
	if !ok {
		return nil, errSessionMissing
	}
	return &s, nil
}

func (f *fakeSessions) Save(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byToken[s.Token] = *s
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) stored(token string) (model.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byToken[token]
	return s, ok
}

var errSessionMissing = errors.New("session not found")

type fakeSearch struct {
	authors []model.SearchResult
	media   []model.SearchResult
	err     error

	gotQuery string
	gotLimit int
	calls    int
}

func (f *fakeSearch) SearchAuthors(_ context.Context, q string, limit int) ([]model.SearchResult, error) {
	f.gotQuery, f.gotLimit = q, limit
	f.calls++
	return f.authors, f.err
}

func (f *fakeSearch) SearchMedia(_ context.Context, q string, limit int) ([]model.SearchResult, error) {
	f.gotQuery, f.gotLimit = q, limit
	f.calls++
	return f.media, f.err
}
