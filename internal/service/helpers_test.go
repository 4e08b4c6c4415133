package service

import (
	"context"
	"errors"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	errLedgerDown = errors.New("ledger unavailable")
	errReadFailed = errors.New("connection reset")
)

// failingHistoryRepo rejects every write and serves reads from the real table.
type failingHistoryRepo struct {
	repository.HistoryRepository
}

func (failingHistoryRepo) Append(context.Context, *model.InventoryHistory) error {
	return errLedgerDown
}

func (failingHistoryRepo) DeleteAllForProduct(context.Context, uuid.UUID) (int64, error) {
	return 0, errLedgerDown
}

// flakyProductRepo serves the real table; failFindByID breaks reads by id and
// hideNames makes name lookups miss, as a concurrent writer would see them.
type flakyProductRepo struct {
	repository.ProductRepository
	failFindByID bool
	hideNames    bool
}

func (r *flakyProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if r.failFindByID {
		return nil, errReadFailed
	}
	return r.ProductRepository.FindByID(ctx, id)
}

func (r *flakyProductRepo) FindByNameExact(ctx context.Context, name string) (*model.Product, error) {
	if r.hideNames {
		return nil, repository.ErrNotFound
	}
	return r.ProductRepository.FindByNameExact(ctx, name)
}

func newActor(t *testing.T, db *gorm.DB) Actor {
	t.Helper()
	u := testutil.CreateUser(t, db, "staff@example.com", "Sam Staff", "secret123", model.RoleStaff)
	return Actor{ID: u.ID, Name: u.FullName, Email: u.Email}
}

func ledgerFor(t *testing.T, db *gorm.DB, productID uuid.UUID) []model.InventoryHistory {
	t.Helper()
	var entries []model.InventoryHistory
	require.NoError(t, db.Where("product_id = ?", productID).Order("created_at ASC").Order("id ASC").Find(&entries).Error)
	return entries
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func widgetInput() CreateProductInput {
	return CreateProductInput{Name: "Widget", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 10}
}

func strPtr(s string) *string { return &s }
