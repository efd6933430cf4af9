package models

import "time"

// SessionUser is the user snapshot embedded in a session at login time.
type SessionUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}

// Principal returns the identity used for authorization checks.
func (u SessionUser) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Type}
}

// Session is the single authenticated session of the device.
type Session struct {
	User      SessionUser `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt < now.UnixMilli()
}

// ExpiresAtTime converts the epoch-millisecond expiry to a time.
func (s Session) ExpiresAtTime() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Principal identifies the actor of a service call.
type Principal struct {
	ID   string
	Role UserType
}

// IsProfessor reports whether the actor is a professor.
func (p Principal) IsProfessor() bool { return p.Role == UserTypeProfessor }

// IsStudent reports whether the actor is a student.
func (p Principal) IsStudent() bool { return p.Role == UserTypeStudent }
