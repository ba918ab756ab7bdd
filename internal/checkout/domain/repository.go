package domain

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore holds checkout sessions for a bounded time. Sessions are never
// written to the relational database.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	// Get returns nil when the session does not exist or has expired.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ClaimConfirmation atomically takes the confirmation claim on a session.
	// It reports false when another confirmation already holds it. The claim
	// lives as long as a session entry unless released.
	ClaimConfirmation(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseConfirmation(ctx context.Context, id uuid.UUID) error
}
