package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

// AuthService owns the session lifecycle: login, logout and preferences.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, logger: loggerOrDefault(logger)}
}

// Login checks credentials and returns a fresh session carrying them.
// Preferences from the current session, if any, are kept; its token is retired.
func (s *AuthService) Login(ctx context.Context, current *model.Session, email, password string) (*model.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: load user: %v", ErrInternal, err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: verify password: %v", ErrInternal, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	sess, err := s.newSession()
	if err != nil {
		return nil, err
	}
	sess.Email = user.Email
	sess.PasswordHash = user.PasswordHash
	if current != nil {
		sess.DarkMode = current.DarkMode
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if current != nil {
		_ = s.sessions.Delete(ctx, current.Token)
	}

	s.logger.InfoContext(ctx, "user_logged_in", slog.Int64("user_id", user.ID))
	return sess, nil
}

// Logout drops the login from the session and keeps its preferences.
func (s *AuthService) Logout(ctx context.Context, sess *model.Session) error {
	if !sess.HasIdentity() {
		return nil
	}

	sess.ClearIdentity()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

// ToggleDarkMode flips the dark mode preference, starting an anonymous
// session when the caller has none. The returned session has been saved.
func (s *AuthService) ToggleDarkMode(ctx context.Context, sess *model.Session) (*model.Session, error) {
	if sess == nil {
		var err error
		if sess, err = s.newSession(); err != nil {
			return nil, err
		}
	}

	sess.DarkMode = !sess.DarkMode
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return sess, nil
}

// CreateUser provisions an account with an argon2id password hash.
func (s *AuthService) CreateUser(ctx context.Context, user *model.User, password string) error {
	if !model.ValidEmail(user.Email) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, model.ErrInvalidEmail)
	}
	if err := (model.BirthdayUpdate{Value: user.Birthday}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	if user.UserType == "" {
		user.UserType = model.UserTypeMember
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fmt.Errorf("%w: email is already in use", ErrConflict)
		}
		return fmt.Errorf("%w: create user: %v", ErrInternal, err)
	}

	s.logger.InfoContext(ctx, "user_created", slog.Int64("user_id", user.ID))
	return nil
}

// upgradeHash re-hashes a verified password made with older argon2
// parameters. Failure keeps the old hash, which still verifies.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdateUserField(ctx, user.ID, model.PasswordUpdate{Hash: hash})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "password_rehash_failed",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	user.PasswordHash = hash
	s.logger.InfoContext(ctx, "password_rehashed", slog.Int64("user_id", user.ID))
}

func (s *AuthService) newSession() (*model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("%w: generate session token: %v", ErrInternal, err)
	}
	return &model.Session{Token: token}, nil
}
