package server

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed creates default privileges, roles, and the admin user if they don't exist.
func Seed(ctx context.Context, db *gorm.DB, auth config.AuthConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	// privileges before roles, roles are granted them by code
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return err
	}

	_, err := userRepo.FindByEmail(ctx, auth.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:        auth.AdminEmail,
		FullName:     "Administrator",
		RoleID:       &adminRole.ID,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	if err := admin.SetPassword(auth.AdminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Info("admin user created", zap.String("email", auth.AdminEmail))
	return nil
}
