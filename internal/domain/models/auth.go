package models

import "time"

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the authenticated identity returned by POST /Auth/login and
// held for the lifetime of the login. At most one Session is active per
// process; only the session manager mutates it.
type Session struct {
	UserID      int       `json:"userID"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	Token       string    `json:"token"`
	TokenExpiry time.Time `json:"tokenExpiry"`
}

// Expired reports whether the session token is past its expiry at the given
// instant. A zero TokenExpiry means the backend supplied no expiry and the
// token is treated as still valid.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.TokenExpiry.IsZero() {
		return false
	}
	return now.After(s.TokenExpiry)
}
