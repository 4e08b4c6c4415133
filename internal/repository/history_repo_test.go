package repository_test

import (
	"context"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendAt(t *testing.T, repo repository.HistoryRepository, entry *model.InventoryHistory, at time.Time) *model.InventoryHistory {
	t.Helper()
	entry.CreatedAt = at
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestHistoryRepoQueryAndStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	products := repository.NewProductRepo(db)
	history := repository.NewHistoryRepo(db)
	user := testutil.CreateUser(t, db, "staff@example.com", "Sam Staff", "secret123", model.RoleStaff)

	widget := model.Product{Name: "Widget", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 3}
	require.NoError(t, products.Create(ctx, &widget))
	gone := uuid.New()

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	appendAt(t, history, model.NewInventoryHistory(widget.ID, "Widget", 0, 10, user.ID, user.FullName, model.ReasonInitialStock), day)
	appendAt(t, history, model.NewInventoryHistory(widget.ID, "Widget", 10, 3, user.ID, user.FullName, model.ReasonStockUpdate), day.Add(time.Hour))
	appendAt(t, history, model.NewInventoryHistory(gone, "Old Thing", 0, 4, user.ID, user.FullName, model.ReasonCSVImport), day.Add(48*time.Hour))

	t.Run("newest first with enrichment", func(t *testing.T) {
		entries, total, err := history.Query(ctx, repository.HistoryFilter{}, repository.Page{Number: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, entries, 3)

		assert.Equal(t, "Old Thing", entries[0].ProductName)
		assert.Nil(t, entries[0].Product)
		require.NotNil(t, entries[0].User)
		assert.Equal(t, "staff@example.com", entries[0].User.Email)

		assert.Equal(t, -7, entries[1].ChangeAmount)
		assert.Equal(t, model.ChangeDecrease, entries[1].ChangeType)
		require.NotNil(t, entries[1].Product)
		assert.Equal(t, "Tools", entries[1].Product.Category)
	})

	t.Run("product filter with stats", func(t *testing.T) {
		filter := repository.HistoryFilter{ProductID: &widget.ID}
		_, total, err := history.Query(ctx, filter, repository.Page{Number: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		stats, err := history.Stats(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.TotalChanges)
		assert.EqualValues(t, 10, stats.TotalIncrease)
		assert.EqualValues(t, 7, stats.TotalDecrease)
		assert.InDelta(t, 8.5, stats.AvgChangeAmount, 0.0001)
	})

	t.Run("day window", func(t *testing.T) {
		from := day.Truncate(24 * time.Hour)
		to := from.Add(24 * time.Hour)
		entries, total, err := history.Query(ctx, repository.HistoryFilter{From: &from, To: &to}, repository.Page{Number: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, entries, 2)
	})

	t.Run("change type", func(t *testing.T) {
		stats, err := history.Stats(ctx, repository.HistoryFilter{ChangeType: model.ChangeIncrease})
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.TotalChanges)
		assert.EqualValues(t, 14, stats.TotalIncrease)
		assert.EqualValues(t, 0, stats.TotalDecrease)
	})

	t.Run("empty set is zero", func(t *testing.T) {
		other := uuid.New()
		stats, err := history.Stats(ctx, repository.HistoryFilter{UserID: &other})
		require.NoError(t, err)
		assert.Equal(t, repository.HistoryStats{}, *stats)
	})

	t.Run("stock movement", func(t *testing.T) {
		movement, err := history.GetStockMovement(ctx, day.Add(-time.Hour), day.Add(72*time.Hour), time.UTC)
		require.NoError(t, err)
		require.Len(t, movement, 2)
		assert.Equal(t, "2026-03-10", movement[0].Date)
		assert.EqualValues(t, 10, movement[0].Inbound)
		assert.EqualValues(t, 7, movement[0].Outbound)
		assert.Equal(t, "2026-03-12", movement[1].Date)
	})
}

func TestHistoryRepoStockMovementUsesLocalDays(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	history := repository.NewHistoryRepo(db)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	productID, userID := uuid.New(), uuid.New()
	// 20:00 UTC on the 11th is already the 12th in Jakarta
	appendAt(t, history, model.NewInventoryHistory(productID, "Widget", 0, 5, userID, "U", ""), time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC))
	appendAt(t, history, model.NewInventoryHistory(productID, "Widget", 5, 3, userID, "U", ""), time.Date(2026, 3, 12, 16, 0, 0, 0, jakarta))

	start := time.Date(2026, 3, 12, 0, 0, 0, 0, jakarta)
	movement, err := history.GetStockMovement(ctx, start, start.AddDate(0, 0, 1), jakarta)
	require.NoError(t, err)
	require.Len(t, movement, 1)
	assert.Equal(t, "2026-03-12", movement[0].Date)
	assert.EqualValues(t, 5, movement[0].Inbound)
	assert.EqualValues(t, 2, movement[0].Outbound)
}

func TestHistoryRepoDeleteAllForProduct(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	history := repository.NewHistoryRepo(db)

	productID, keep, userID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	appendAt(t, history, model.NewInventoryHistory(productID, "A", 0, 1, userID, "U", ""), now)
	appendAt(t, history, model.NewInventoryHistory(productID, "A", 1, 2, userID, "U", ""), now)
	appendAt(t, history, model.NewInventoryHistory(keep, "B", 0, 1, userID, "U", ""), now)

	removed, err := history.DeleteAllForProduct(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, total, err := history.Query(ctx, repository.HistoryFilter{ProductID: &productID}, repository.Page{Number: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = history.Query(ctx, repository.HistoryFilter{ProductID: &keep}, repository.Page{Number: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
