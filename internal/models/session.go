package models

import "time"

// Session is an authenticated upstream session. CredentialToken is the
// combined cookie header value captured at login.
type Session struct {
	CredentialToken string
	ExpiresAt       time.Time
}

// Valid reports whether the session carries a token and has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.CredentialToken != "" && !now.After(s.ExpiresAt)
}
