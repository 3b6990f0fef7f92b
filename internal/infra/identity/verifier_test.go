package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
)

const testSecret = "super-secret-signing-key"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(config.IdentitySettings{
		URL:            "http://identity.local",
		ServiceKey:     "service-key",
		JWTSecret:      testSecret,
		RequestTimeout: time.Second,
	}, zap.NewNop())
}

func signToken(t *testing.T, secret string, claims accessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestVerifyTokenLocal(t *testing.T) {
	client := newTestClient(t)

	token := signToken(t, testSecret, accessClaims{
		Email:        "main@example.com",
		UserMetadata: map[string]any{"role": "MAIN", "complexId": "c1"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	user, err := client.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if user.ID != "u1" || user.Email != "main@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if role, ok := user.RoleMetadata(); !ok || role != "MAIN" {
		t.Fatalf("expected role metadata, got %q ok=%v", role, ok)
	}
}

func TestVerifyTokenLocalRejectsExpired(t *testing.T) {
	client := newTestClient(t)

	token := signToken(t, testSecret, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	if _, err := client.VerifyToken(context.Background(), token); !errors.Is(err, port.ErrIdentityUserNotFound) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestVerifyTokenLocalRejectsWrongSecret(t *testing.T) {
	client := newTestClient(t)

	token := signToken(t, "other-secret", accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	if _, err := client.VerifyToken(context.Background(), token); !errors.Is(err, port.ErrIdentityUserNotFound) {
		t.Fatalf("expected forged token rejected, got %v", err)
	}
}

func TestVerifyTokenLocalRequiresSubjectAndExpiry(t *testing.T) {
	client := newTestClient(t)

	missingSubject := signToken(t, testSecret, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := client.VerifyToken(context.Background(), missingSubject); !errors.Is(err, port.ErrIdentityUserNotFound) {
		t.Fatalf("expected subject-less token rejected, got %v", err)
	}

	missingExpiry := signToken(t, testSecret, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	if _, err := client.VerifyToken(context.Background(), missingExpiry); !errors.Is(err, port.ErrIdentityUserNotFound) {
		t.Fatalf("expected token without expiry rejected, got %v", err)
	}

	if _, err := client.VerifyToken(context.Background(), "not-a-token"); !errors.Is(err, port.ErrIdentityUserNotFound) {
		t.Fatalf("expected malformed token rejected, got %v", err)
	}
}
