package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/metrics"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

// AccountService handles self-service account changes.
type AccountService struct {
	users    UserStore
	sessions SessionStore
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, sessions SessionStore, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		users:    users,
		sessions: sessions,
		metrics:  recorder,
		logger:   loggerOrDefault(logger),
	}
}

// Profile returns the identified user's record.
func (s *AccountService) Profile(ctx context.Context, id *model.Identity) (*model.User, error) {
	if id == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: load user: %v", ErrInternal, err)
	}
	return user, nil
}

// UpdateField changes one field of the identified user.
// After an email or password change the session is rewritten to match,
// so the caller stays logged in.
func (s *AccountService) UpdateField(ctx context.Context, sess *model.Session, id *model.Identity, update model.FieldUpdate) error {
	if id == nil {
		return ErrUnauthorized
	}

	if err := update.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch u := update.(type) {
	case model.EmailUpdate:
		owner, err := s.users.GetUserByEmail(ctx, u.Value)
		switch {
		case err == nil && owner.ID != id.UserID:
			return fmt.Errorf("%w: email is already in use", ErrConflict)
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return fmt.Errorf("%w: check email: %v", ErrInternal, err)
		}
	case model.PasswordUpdate:
		hash, err := hashPassword(u.Plaintext)
		if err != nil {
			return err
		}
		u.Hash = hash
		update = u
	}

	if err := s.users.UpdateUserField(ctx, id.UserID, update); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return fmt.Errorf("%w: email is already in use", ErrConflict)
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: update %s: %v", ErrInternal, update.Field(), err)
	}

	s.metrics.IncUserFieldUpdated(update.Field())
	s.logger.InfoContext(ctx, "user_field_updated",
		slog.Int64("user_id", id.UserID),
		slog.String("field", update.Field()),
	)

	if sess == nil {
		return nil
	}

	switch u := update.(type) {
	case model.EmailUpdate:
		sess.Email = u.Value
	case model.PasswordUpdate:
		sess.PasswordHash = u.Hash
	default:
		return nil
	}

	// The change is committed; a failed rewrite only ends this session.
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.WarnContext(ctx, "session refresh failed",
			slog.Int64("user_id", id.UserID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Delete removes the identified user after checking their password,
// then drops the login from the session.
func (s *AccountService) Delete(ctx context.Context, sess *model.Session, id *model.Identity, password string) error {
	if id == nil {
		return ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: load user: %v", ErrInternal, err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("%w: verify password: %v", ErrInternal, err)
	}
	if !ok {
		return fmt.Errorf("%w: incorrect password", ErrUnauthorized)
	}

	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: delete user: %v", ErrInternal, err)
	}

	s.metrics.IncUserDeleted()
	s.logger.InfoContext(ctx, "user_deleted", slog.Int64("user_id", user.ID))

	if sess != nil {
		sess.ClearIdentity()
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.logger.WarnContext(ctx, "session cleanup failed",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
