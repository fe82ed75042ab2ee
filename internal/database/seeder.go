// server/internal/database/seeder.go
package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
	"motohub-api-server/internal/models"
)

// PasswordHasher is the part of the auth service the seeder needs.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// SeedAdmin creates the initial admin account when no admin exists yet.
func SeedAdmin(ctx context.Context, users *UserRepository, hasher PasswordHasher, cfg config.AuthConfig, logger *log.Logger) error {
	counts, err := users.CountByRole(ctx)
	if err != nil {
		return err
	}
	if counts[models.RoleAdmin] > 0 {
		logger.Debug("Admin already exists. Seeding skipped.")
		return nil
	}

	logger.WithField("email", cfg.SeedAdminEmail).Info("No admin found. Seeding...")
	hash, err := hasher.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:           uuid.NewString(),
		Email:        cfg.SeedAdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Provider:     "password",
		CreatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("Admin seeded successfully.")
	return nil
}
