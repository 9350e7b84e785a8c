package middleware

import (
	"net/http"
	"net/url"

	"github.com/librarydb/librarydb/internal/auth"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/auth/login"

// RequireSession rejects API requests without an authenticated identity.
// Must be applied after Session middleware.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsLoggedIn(r.Context()) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Authentication required","code":"UNAUTHORIZED"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePage redirects unauthenticated page requests to the login form.
// GET and HEAD requests come back to the requested path after login;
// other methods come back to fallback.
func RequirePage(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.IsLoggedIn(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			target := fallback
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				target = r.URL.Path
			}
			http.Redirect(w, r, LoginURL(target), http.StatusFound)
		})
	}
}

// LoginURL builds the login redirect carrying next.
func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(SafeRedirectTarget(next))
}
