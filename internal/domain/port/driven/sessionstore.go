package driven

import (
	"context"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// SessionStore defines the driven port for the locally persisted session:
// the bearer token plus the cached user profile. The stylist client reads
// the token on every outgoing request and clears the whole session when the
// backend answers 401.
type SessionStore interface {
	// Token returns the stored bearer token, or "" when signed out.
	Token(ctx context.Context) (string, error)

	// Save persists the session, replacing any previous one.
	Save(ctx context.Context, session model.Session) error

	// User returns the cached profile, or nil when signed out.
	User(ctx context.Context) (*model.UserProfile, error)

	// Clear removes the token and the cached profile.
	Clear(ctx context.Context) error
}
