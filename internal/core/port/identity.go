package port

import (
	"context"
	"errors"
)

// ErrIdentityUserNotFound is returned when no account matches the lookup.
var ErrIdentityUserNotFound = errors.New("identity user not found")

// IdentityUser is the provider's view of an account.
type IdentityUser struct {
	ID       string
	Email    string
	Metadata map[string]any
}

// RoleMetadata extracts the role claim from provider metadata, if present.
func (u IdentityUser) RoleMetadata() (string, bool) {
	if u.Metadata == nil {
		return "", false
	}
	role, ok := u.Metadata["role"].(string)
	return role, ok
}

// InviteResult reports how an invitation was delivered.
type InviteResult struct {
	UserID    string
	EmailSent bool
	// EmailType is "invite" for new accounts or "recovery" when the address
	// was already registered and a password-reset mail was sent instead.
	EmailType string
}

// IdentityProvider abstracts the hosted identity service (token
// verification plus admin-level account management).
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (*IdentityUser, error)
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
	CreateUser(ctx context.Context, email, password string, metadata map[string]any) (string, error)
	InviteByEmail(ctx context.Context, email string, metadata map[string]any, redirectTo string) (string, error)
	SendRecovery(ctx context.Context, email, redirectTo string) error
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error
}
