// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// SessionService owns the login lifecycle: it runs the auth endpoints,
// persists the resulting session, and tracks whether the backend has since
// rejected the token. HandleUnauthorized is wired as the stylist client's
// 401 callback at composition time.
type SessionService struct {
	client   driven.StylistClient
	sessions driven.SessionStore
	expired  atomic.Bool
}

// NewSessionService creates a SessionService with all required dependencies.
func NewSessionService(client driven.StylistClient, sessions driven.SessionStore) *SessionService {
	return &SessionService{
		client:   client,
		sessions: sessions,
	}
}

// HandleUnauthorized records that the backend rejected the stored token.
// The stylist client has already cleared the session when this fires; the
// flag survives so the panel can prompt for a fresh login.
func (s *SessionService) HandleUnauthorized() {
	s.expired.Store(true)
	slog.Info("session marked expired after backend 401")
}

// SendCode requests an SMS login code.
func (s *SessionService) SendCode(ctx context.Context, phone string) error {
	return s.client.SendCode(ctx, phone)
}

// LoginSMS signs in with a phone number and SMS code.
func (s *SessionService) LoginSMS(ctx context.Context, phone, code string) (model.UserProfile, error) {
	session, err := s.client.LoginSMS(ctx, phone, code)
	if err != nil {
		return model.UserProfile{}, err
	}
	return s.adopt(ctx, session)
}

// LoginPassword signs in with an account identifier and password.
func (s *SessionService) LoginPassword(ctx context.Context, account, password string) (model.UserProfile, error) {
	session, err := s.client.LoginPassword(ctx, account, password)
	if err != nil {
		return model.UserProfile{}, err
	}
	return s.adopt(ctx, session)
}

// RegisterEmail creates an account and signs in with its first session.
func (s *SessionService) RegisterEmail(ctx context.Context, email, password, nickname string) (model.UserProfile, error) {
	session, err := s.client.RegisterEmail(ctx, email, password, nickname)
	if err != nil {
		return model.UserProfile{}, err
	}
	return s.adopt(ctx, session)
}

// adopt persists a fresh session and resets the expiry flag.
func (s *SessionService) adopt(ctx context.Context, session model.Session) (model.UserProfile, error) {
	if err := s.sessions.Save(ctx, session); err != nil {
		return model.UserProfile{}, fmt.Errorf("persist session: %w", err)
	}
	s.expired.Store(false)
	slog.Info("signed in", "user", session.User.Nickname)
	return session.User, nil
}

// Logout clears the stored session locally. The backend has no logout
// endpoint; discarding the token is the logout.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.expired.Store(false)
	return nil
}

// Current returns the cached profile (nil when signed out) and whether the
// previous session was invalidated by the backend.
func (s *SessionService) Current(ctx context.Context) (*model.UserProfile, bool, error) {
	user, err := s.sessions.User(ctx)
	if err != nil {
		return nil, false, err
	}
	return user, s.expired.Load(), nil
}
