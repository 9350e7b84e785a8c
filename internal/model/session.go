package model

// Session is the server-side state behind a session cookie.
// Email and PasswordHash are empty for anonymous sessions.
type Session struct {
	Token        string
	Email        string
	PasswordHash string
	DarkMode     bool
}

// HasIdentity reports whether the session carries login credentials.
func (s *Session) HasIdentity() bool {
	return s != nil && s.Email != "" && s.PasswordHash != ""
}

// ClearIdentity drops the login credentials but keeps preferences.
func (s *Session) ClearIdentity() {
	s.Email = ""
	s.PasswordHash = ""
}

// CachedSession represents session data stored in a Redis hash.
// Uses string types for Redis hash compatibility.
type CachedSession struct {
	Email        string `redis:"email"`
	PasswordHash string `redis:"pwdhash"`
	DarkMode     string `redis:"darkmode"` // "1" or "0"
}

// ToSession converts CachedSession to the Session domain model.
func (c *CachedSession) ToSession(token string) *Session {
	return &Session{
		Token:        token,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		DarkMode:     c.DarkMode == "1",
	}
}

// ToCachedSession converts Session to CachedSession.
func (s *Session) ToCachedSession() *CachedSession {
	return &CachedSession{
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		DarkMode:     boolToString(s.DarkMode),
	}
}

// Identity is the authenticated principal of a request.
type Identity struct {
	UserID int64
	Email  string
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
