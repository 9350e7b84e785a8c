package auth

import (
	"context"
	"testing"

	"github.com/librarydb/librarydb/internal/model"
)

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if IdentityFromContext(ctx) != nil {
		t.Error("empty context should have no identity")
	}
	if IsLoggedIn(ctx) {
		t.Error("empty context should not be logged in")
	}

	id := &model.Identity{UserID: 7, Email: "a@b.io"}
	ctx = ContextWithIdentity(ctx, id)

	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("IdentityFromContext = %v, want %v", got, id)
	}
	if !IsLoggedIn(ctx) {
		t.Error("context with identity should be logged in")
	}
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if SessionFromContext(ctx) != nil {
		t.Error("empty context should have no session")
	}

	s := &model.Session{Token: "t", DarkMode: true}
	ctx = ContextWithSession(ctx, s)
	if got := SessionFromContext(ctx); got != s {
		t.Errorf("SessionFromContext = %v, want %v", got, s)
	}
}
