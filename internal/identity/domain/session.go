package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Role is the caller's role in the portal.
type Role string

const (
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
)

// ErrInvalidSession is returned for a session without a user or with an unknown role.
var ErrInvalidSession = errors.New("invalid session")

// Session is the authenticated caller. It is passed explicitly into every service call.
type Session struct {
	UserID uuid.UUID
	Role   Role
}

// NewSession validates and builds a Session.
func NewSession(userID uuid.UUID, role Role) (Session, error) {
	s := Session{UserID: userID, Role: role}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Validate checks the session is usable.
func (s Session) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrInvalidSession
	}
	if s.Role != RoleClient && s.Role != RoleCoach {
		return ErrInvalidSession
	}
	return nil
}

// IsCoach reports whether the caller is a coach. Coaches are never gated by subscription state.
func (s Session) IsCoach() bool {
	return s.Role == RoleCoach
}
