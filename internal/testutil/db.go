// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database closed at test end.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Options{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser stores a user holding the given role, seeding roles first.
func CreateUser(t *testing.T, db *gorm.DB, email, name, password, roleCode string) *model.User {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repository.NewPrivilegeRepo(db).SeedDefaults(ctx))
	roles := repository.NewRoleRepo(db)
	require.NoError(t, roles.SeedDefaults(ctx))
	role, err := roles.FindByCode(ctx, roleCode)
	require.NoError(t, err)

	user := &model.User{Email: email, FullName: name, RoleID: &role.ID, IsActive: true, TokenVersion: uuid.NewString()}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, repository.NewUserRepo(db).Create(ctx, user))

	created, err := repository.NewUserRepo(db).FindByID(ctx, user.ID)
	require.NoError(t, err)
	return created
}
