package taskapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskline/internal/logging"
)

// Login exchanges credentials for a bearer token and persists it in the
// session store. A 401 leaves the store untouched and reports rejected
// credentials. Fire-once: no retry.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if err := ValidateLogin(email, password); err != nil {
		return "", err
	}

	var resp AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/authenticate", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return "", fmt.Errorf("invalid credentials: %w", err)
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", ErrRequestFailed)
	}

	if err := c.sessions.Save(resp.Token); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	c.logger.Info("session established", logging.String("email", email))
	return resp.Token, nil
}

// Register creates an account and, like the original client, auto-establishes
// the session from the returned token so no second login round trip is needed.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := ValidateRegister(req); err != nil {
		return "", err
	}

	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: register response carried no token", ErrRequestFailed)
	}

	if err := c.sessions.Save(resp.Token); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	c.logger.Info("account registered", logging.String("email", req.Email))
	return resp.Token, nil
}
