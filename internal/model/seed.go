package model

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdminUser ensures the configured bootstrap admin account exists. It is
// a no-op when the admin credentials are not configured or the account is
// already present.
func SeedAdminUser(ctx context.Context, repo Repository, cfg config.Config, hasher *auth.Hasher) error {
	if repo == nil || hasher == nil {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	password := strings.TrimSpace(cfg.AdminPassword)
	if email == "" || password == "" {
		return nil
	}

	_, err := repo.GetUserByEmail(ctx, email, true)
	switch {
	case err == nil:
		logrus.WithField("email", email).Debug("admin account already exists")
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through and create
	default:
		return err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := &entity.DbUser{
		Name:         strings.TrimSpace(cfg.AdminName),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.UserRoleAdmin,
		Active:       true,
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}

	if err := repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	logrus.WithField("email", email).Info("admin account created")
	return nil
}
