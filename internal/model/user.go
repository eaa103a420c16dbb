package model

import (
	"strings"

	"github.com/goccy/go-json"
)

type Role string

const (
	RoleUnconfirmed Role = "unconfirmed"
	RoleEmployee    Role = "employee"
	RoleMentor      Role = "mentor"
	RoleHR          Role = "hr"
	RoleAdmin       Role = "admin"
)

// Roles lists every role the portal knows about, lowest privilege first.
var Roles = []Role{RoleUnconfirmed, RoleEmployee, RoleMentor, RoleHR, RoleAdmin}

// ParseRole maps an upstream role string onto the closed Role set.
// Anything unrecognised is treated as unconfirmed.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEmployee:
		return RoleEmployee
	case RoleMentor:
		return RoleMentor
	case RoleHR:
		return RoleHR
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnconfirmed
	}
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// HomePath is the dashboard a user lands on after login.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/app/admin"
	case RoleHR:
		return "/app/hr"
	case RoleMentor:
		return "/app/mentor"
	case RoleEmployee:
		return "/app"
	case RoleUnconfirmed:
		return "/app/unconfirmed"
	}
	return "/app/unconfirmed"
}

// CanEditKnowledge reports whether the role may upload or delete library files.
func (r Role) CanEditKnowledge() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleMentor:
		return true
	case RoleEmployee, RoleUnconfirmed:
		return false
	}
	return false
}

// HasChat reports whether the assistant widget is offered to the role.
func (r Role) HasChat() bool {
	switch r {
	case RoleAdmin:
		return false
	case RoleHR, RoleMentor, RoleEmployee, RoleUnconfirmed:
		return true
	}
	return false
}

func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	XPPoints       int     `json:"xp_points"`
	Level          int     `json:"level"`
	OrganizationID string  `json:"organization_id,omitempty"`
	MentorID       *string `json:"mentor_id"`
	TrackID        *string `json:"track_id"`
}

func (u *User) HasTrack() bool {
	return u.TrackID != nil && *u.TrackID != ""
}

func (u *User) HasMentor() bool {
	return u.MentorID != nil && *u.MentorID != ""
}
