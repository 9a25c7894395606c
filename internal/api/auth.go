package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	"golang.org/x/oauth2"
)

const minPasswordLength = 6

// Session is what login and register hand back.
type Session struct {
	Token *oauth2.Token
	User  model.User
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}
	return sessionFrom(env)
}

func (c *Client) Register(ctx context.Context, email, password, name string) (Session, error) {
	if len(password) < minPasswordLength {
		return Session{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	env, err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
		"name":     strings.TrimSpace(name),
	})
	if err != nil {
		return Session{}, err
	}
	return sessionFrom(env)
}

// Me verifies the current token and returns its user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return model.User{}, err
	}
	if env.User == nil {
		return model.User{}, fmt.Errorf("response has no user")
	}
	return *env.User, nil
}

// ForgotPassword asks the API to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{
		"email": strings.TrimSpace(email),
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/verify-reset-token", map[string]string{
		"token": token,
	})
	if err != nil {
		return false, err
	}
	return env.Valid, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": password,
	})
	return err
}

func sessionFrom(env envelope) (Session, error) {
	if env.AccessToken == "" {
		return Session{}, fmt.Errorf("response has no access token")
	}
	session := Session{Token: &oauth2.Token{AccessToken: env.AccessToken, TokenType: "Bearer"}}
	if env.User != nil {
		session.User = *env.User
	}
	return session, nil
}
