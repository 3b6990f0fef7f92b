package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
	"github.com/hyeonbit/complex-admin/internal/infra/database"
	"github.com/hyeonbit/complex-admin/internal/infra/identity"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
	postgresrepo "github.com/hyeonbit/complex-admin/internal/repository/postgres"
)

// Provisions the SUPER account out of band. Safe to run repeatedly: an
// existing account is updated in place, never duplicated.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "super admin email address")
	password := flag.String("password", "", "initial password for a new account")
	name := flag.String("name", "Super Admin", "display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	address := strings.ToLower(strings.TrimSpace(*email))
	if address == "" && len(cfg.Identity.SuperAdminEmails) > 0 {
		address = strings.ToLower(strings.TrimSpace(cfg.Identity.SuperAdminEmails[0]))
	}
	if address == "" {
		log.Fatal("no email provided and no super admin email configured")
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		zlog.Fatal("failed to init postgres", zap.Error(err))
	}
	defer pool.Close()

	identityClient := identity.NewClient(cfg.Identity, zlog)
	users := postgresrepo.NewUserRepository(pool)

	metadata := map[string]any{"role": string(domain.RoleSuper)}

	userID, err := identityClient.FindUserIDByEmail(ctx, address)
	switch {
	case err == nil:
		if err := identityClient.UpdateUserMetadata(ctx, userID, metadata); err != nil {
			zlog.Fatal("failed to update metadata", zap.Error(err))
		}
		zlog.Info("existing account promoted",
			zap.String("user_id", userID),
			zap.String("email", logger.MaskEmail(address)),
		)

	case errors.Is(err, port.ErrIdentityUserNotFound):
		if strings.TrimSpace(*password) == "" {
			zlog.Fatal("password required to create a new account")
		}
		userID, err = identityClient.CreateUser(ctx, address, *password, metadata)
		if err != nil {
			zlog.Fatal("failed to create account", zap.Error(err))
		}
		zlog.Info("account created",
			zap.String("user_id", userID),
			zap.String("email", logger.MaskEmail(address)),
		)

	default:
		zlog.Fatal("failed to look up account", zap.Error(err))
	}

	user := domain.User{
		ID:          userID,
		RoleID:      domain.RoleSuper,
		DisplayName: strings.TrimSpace(*name),
		Metadata:    map[string]any{"email": address},
	}
	if err := users.Upsert(ctx, user); err != nil {
		zlog.Fatal("failed to upsert profile", zap.Error(err))
	}

	zlog.Info("super admin provisioned", zap.String("user_id", userID))
}
