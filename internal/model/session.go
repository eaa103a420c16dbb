package model

import "time"

// Session is the server-side replacement for the browser's stored credential
// and cached identity. It is created by login or registration and removed by
// logout or by any unauthorized upstream response.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Role is unconfirmed until an identity has been cached.
func (s *Session) Role() Role {
	if s == nil || s.User == nil {
		return RoleUnconfirmed
	}
	return s.User.Role
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Clear drops the credential and identity in place.
func (s *Session) Clear() {
	s.Token = ""
	s.User = nil
}
