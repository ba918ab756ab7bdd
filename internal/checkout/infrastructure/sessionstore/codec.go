// Package sessionstore keeps checkout sessions outside the relational database,
// in process memory or in Redis, each entry bounded by a TTL.
package sessionstore

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
)

const (
	keyPrefix      = "portal:checkout:session:"
	claimKeyPrefix = "portal:checkout:confirm:"
)

// Key is the storage key of a session.
func Key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// ClaimKey is the storage key of a session's confirmation claim.
func ClaimKey(id uuid.UUID) string {
	return claimKeyPrefix + id.String()
}

func encode(session *domain.Session) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode checkout session %s: %w", session.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if !session.State.IsValid() {
		return nil, fmt.Errorf("decode checkout session %s: unknown state %q", session.ID, session.State)
	}
	return &session, nil
}
