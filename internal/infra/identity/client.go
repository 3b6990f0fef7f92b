package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
)

// Client talks to the hosted identity provider's admin API (GoTrue wire
// format). All admin calls authenticate with the service key; VerifyToken
// forwards the end-user access token instead.
type Client struct {
	http   *resty.Client
	cfg    config.IdentitySettings
	logger *zap.Logger
}

// NewClient constructs an identity client from settings.
func NewClient(cfg config.IdentitySettings, log *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", cfg.ServiceKey)

	return &Client{http: client, cfg: cfg, logger: log}
}

type userEnvelope struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type listUsersEnvelope struct {
	Users []userEnvelope `json:"users"`
}

type apiError struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func toIdentityUser(u userEnvelope) *port.IdentityUser {
	return &port.IdentityUser{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

// VerifyToken resolves the account behind an end-user access token. With a
// configured signing secret the token is validated locally; otherwise the
// provider is asked.
func (c *Client) VerifyToken(ctx context.Context, token string) (*port.IdentityUser, error) {
	if c.cfg.JWTSecret != "" {
		return c.verifyLocal(token)
	}

	var (
		user   userEnvelope
		apiErr apiError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		SetError(&apiErr).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("identity verify token: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, port.ErrIdentityUserNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity verify token: %s (status %d)", apiErr.text(), resp.StatusCode())
	}

	return toIdentityUser(user), nil
}

// FindUserIDByEmail looks up an account id by address. Returns
// port.ErrIdentityUserNotFound when the address is unregistered.
func (c *Client) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	var (
		list   listUsersEnvelope
		apiErr apiError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ServiceKey).
		SetQueryParam("email", email).
		SetResult(&list).
		SetError(&apiErr).
		Get("/admin/users")
	if err != nil {
		return "", fmt.Errorf("identity find user: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("identity find user: %s (status %d)", apiErr.text(), resp.StatusCode())
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, u := range list.Users {
		if strings.ToLower(u.Email) == normalized {
			return u.ID, nil
		}
	}
	return "", port.ErrIdentityUserNotFound
}

// CreateUser provisions a confirmed account with the given metadata.
func (c *Client) CreateUser(ctx context.Context, email, password string, metadata map[string]any) (string, error) {
	var (
		user   userEnvelope
		apiErr apiError
	)

	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": metadata,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ServiceKey).
		SetBody(body).
		SetResult(&user).
		SetError(&apiErr).
		Post("/admin/users")
	if err != nil {
		return "", fmt.Errorf("identity create user: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("identity create user: %s (status %d)", apiErr.text(), resp.StatusCode())
	}

	c.logger.Info("identity user created",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return user.ID, nil
}

// InviteByEmail sends an invitation mail and returns the new account id.
func (c *Client) InviteByEmail(ctx context.Context, email string, metadata map[string]any, redirectTo string) (string, error) {
	var (
		user   userEnvelope
		apiErr apiError
	)

	body := map[string]any{
		"email": email,
		"data":  metadata,
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ServiceKey).
		SetBody(body).
		SetResult(&user).
		SetError(&apiErr)
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", url.QueryEscape(redirectTo))
	}

	resp, err := req.Post("/invite")
	if err != nil {
		return "", fmt.Errorf("identity invite: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("identity invite: %s (status %d)", apiErr.text(), resp.StatusCode())
	}

	c.logger.Info("identity invite sent",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return user.ID, nil
}

// SendRecovery mails a password-reset link to an existing account.
func (c *Client) SendRecovery(ctx context.Context, email, redirectTo string) error {
	var apiErr apiError

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ServiceKey).
		SetBody(map[string]any{"email": email}).
		SetError(&apiErr)
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", url.QueryEscape(redirectTo))
	}

	resp, err := req.Post("/recover")
	if err != nil {
		return fmt.Errorf("identity recovery: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("identity recovery: %s (status %d)", apiErr.text(), resp.StatusCode())
	}

	c.logger.Info("identity recovery sent", zap.String("email", logger.MaskEmail(email)))
	return nil
}

// UpdateUserMetadata merges metadata onto an existing account.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ServiceKey).
		SetBody(map[string]any{"user_metadata": metadata}).
		SetError(&apiErr).
		Put("/admin/users/" + userID)
	if err != nil {
		return fmt.Errorf("identity update metadata: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return port.ErrIdentityUserNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("identity update metadata: %s (status %d)", apiErr.text(), resp.StatusCode())
	}
	return nil
}

var _ port.IdentityProvider = (*Client)(nil)
