package identity

import (
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/hyeonbit/complex-admin/internal/core/port"
)

// accessClaims mirrors the provider's access-token payload.
type accessClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// verifyLocal validates an access token against the shared signing secret
// without a provider roundtrip. Any validation failure maps to
// port.ErrIdentityUserNotFound so callers treat it as an ordinary bad token.
func (c *Client) verifyLocal(token string) (*port.IdentityUser, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(c.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, port.ErrIdentityUserNotFound
	}
	if claims.Subject == "" {
		return nil, port.ErrIdentityUserNotFound
	}

	return &port.IdentityUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		Metadata: claims.UserMetadata,
	}, nil
}
