package stylist

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

type sessionJSON struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

func (s sessionJSON) toModel() model.Session {
	return model.Session{Token: s.Token, User: s.User}
}

// SendCode requests an SMS login code for the phone number.
func (c *Client) SendCode(ctx context.Context, phone string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/app/auth/send-code", map[string]string{"phone": phone})
	return err
}

// LoginSMS exchanges a phone number and SMS code for a session.
func (c *Client) LoginSMS(ctx context.Context, phone, code string) (model.Session, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/auth/login/sms", map[string]string{
		"phone": phone,
		"code":  code,
	})
	if err != nil {
		return model.Session{}, err
	}
	return decodeSession(payload)
}

// LoginPassword exchanges account (email or phone) and password for a session.
func (c *Client) LoginPassword(ctx context.Context, account, password string) (model.Session, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/auth/login/password", map[string]string{
		"account":  account,
		"password": password,
	})
	if err != nil {
		return model.Session{}, err
	}
	return decodeSession(payload)
}

// RegisterEmail creates an account and returns its first session.
func (c *Client) RegisterEmail(ctx context.Context, email, password, nickname string) (model.Session, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/auth/register/email", map[string]string{
		"email":    email,
		"password": password,
		"nickname": nickname,
	})
	if err != nil {
		return model.Session{}, err
	}
	return decodeSession(payload)
}

func decodeSession(payload json.RawMessage) (model.Session, error) {
	var wire sessionJSON
	if err := json.Unmarshal(payload, &wire); err != nil || wire.Token == "" {
		return model.Session{}, decodeError(payload)
	}
	return wire.toModel(), nil
}
