package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/cache"
	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
)

// SessionLoader loads sessions by token.
type SessionLoader interface {
	Get(ctx context.Context, token string) (*model.Session, error)
}

// UserLookup resolves a user by email.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Sessions   SessionLoader
	Users      UserLookup
	CookieName string

	// Refresh re-issues the cookie for a live session so the browser's
	// expiry slides with the stored record. Nil leaves the cookie alone.
	Refresh func(w http.ResponseWriter, token string)
}

// Session returns a middleware that attaches the caller's session and
// identity to the request context.
//
// A request without a usable cookie passes through anonymously. An identity
// is attached only when the session's email resolves to a user whose stored
// password hash still equals the hash captured at login, so a password change
// ends every other session.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || !auth.ValidateTokenFormat(cookie.Value) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess, err := cfg.Sessions.Get(ctx, cookie.Value)
			if err != nil {
				if !errors.Is(err, cache.ErrSessionNotFound) {
					cfg.Logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(ctx)),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Refresh != nil {
				cfg.Refresh(w, sess.Token)
			}
			ctx = auth.ContextWithSession(ctx, sess)

			if sess.HasIdentity() {
				if id := resolveIdentity(ctx, cfg, sess); id != nil {
					ctx = auth.ContextWithIdentity(ctx, id)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(ctx context.Context, cfg SessionConfig, sess *model.Session) *model.Identity {
	user, err := cfg.Users.GetUserByEmail(ctx, sess.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			cfg.Logger.Error("identity lookup failed",
				slog.String("error", err.Error()),
				slog.String("request_id", GetRequestID(ctx)),
			)
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(sess.PasswordHash)) != 1 {
		cfg.Logger.Info("stale session identity",
			slog.Int64("user_id", user.ID),
			slog.String("request_id", GetRequestID(ctx)),
		)
		return nil
	}

	return &model.Identity{UserID: user.ID, Email: user.Email}
}
