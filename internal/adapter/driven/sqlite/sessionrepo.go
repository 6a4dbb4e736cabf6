package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// Credential slots used by the session store.
const (
	sessionService  = "stylist"
	sessionKeyToken = "token"
	sessionKeyUser  = "user"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo implements the SessionStore port on top of the encrypted
// credential table: the bearer token and the JSON-serialized profile each
// occupy one credential slot under the "stylist" service.
type SessionRepo struct {
	creds driven.CredentialStore
}

// NewSessionRepo creates a SessionRepo over the given credential store.
func NewSessionRepo(creds driven.CredentialStore) *SessionRepo {
	return &SessionRepo{creds: creds}
}

// Token returns the stored bearer token. A missing encryption key reads as
// signed out rather than an error, so anonymous endpoints keep working on
// installs without CLOSETPANEL_SECRET_KEY.
func (r *SessionRepo) Token(ctx context.Context) (string, error) {
	token, err := r.creds.Get(ctx, sessionService, sessionKeyToken)
	if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return token, nil
}

// Save persists the session, replacing any previous one.
func (r *SessionRepo) Save(ctx context.Context, session model.Session) error {
	if err := r.creds.Set(ctx, sessionService, sessionKeyToken, session.Token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	if err := r.creds.Set(ctx, sessionService, sessionKeyUser, string(userJSON)); err != nil {
		return fmt.Errorf("save session user: %w", err)
	}

	return nil
}

// User returns the cached profile, or nil when signed out.
func (r *SessionRepo) User(ctx context.Context) (*model.UserProfile, error) {
	raw, err := r.creds.Get(ctx, sessionService, sessionKeyUser)
	if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var user model.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("unmarshal session user: %w", err)
	}
	return &user, nil
}

// Clear removes the token and the cached profile.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.creds.Delete(ctx, sessionService, sessionKeyToken); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	if err := r.creds.Delete(ctx, sessionService, sessionKeyUser); err != nil {
		return fmt.Errorf("clear session user: %w", err)
	}
	return nil
}
