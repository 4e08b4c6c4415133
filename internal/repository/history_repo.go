package repository

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryFilter narrows ledger queries. Nil/empty fields are ignored;
// From/To bound created_at as [From, To).
type HistoryFilter struct {
	ProductID  *uuid.UUID
	ChangeType model.ChangeType
	UserID     *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// HistoryStats summarizes a filtered ledger slice.
type HistoryStats struct {
	TotalChanges    int64   `json:"totalChanges"`
	TotalIncrease   int64   `json:"totalIncrease"`
	TotalDecrease   int64   `json:"totalDecrease"`
	AvgChangeAmount float64 `json:"avgChangeAmount"`
}

// StockMovementData is one day of aggregated ledger movement.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

// HistoryRepository is append-only: entries are inserted and removed in bulk
// with their product, never updated.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.InventoryHistory) error
	DeleteAllForProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	Query(ctx context.Context, filter HistoryFilter, page Page) ([]model.InventoryHistory, int64, error)
	Stats(ctx context.Context, filter HistoryFilter) (*HistoryStats, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time, loc *time.Location) ([]StockMovementData, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db}
}

func (r *historyRepo) Append(ctx context.Context, entry *model.InventoryHistory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (r *historyRepo) DeleteAllForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.InventoryHistory{})
	return res.RowsAffected, res.Error
}

func (r *historyRepo) Query(ctx context.Context, filter HistoryFilter, page Page) ([]model.InventoryHistory, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.InventoryHistory
	err := r.filtered(ctx, filter).
		Preload("Product").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&entries).Error
	return entries, total, err
}

// Stats aggregates over the filtered set only. An empty set yields zeros.
func (r *historyRepo) Stats(ctx context.Context, filter HistoryFilter) (*HistoryStats, error) {
	var stats HistoryStats
	err := r.filtered(ctx, filter).
		Select(`
			COUNT(*) AS total_changes,
			COALESCE(SUM(CASE WHEN change_type = ? THEN change_amount ELSE 0 END), 0) AS total_increase,
			COALESCE(SUM(CASE WHEN change_type = ? THEN ABS(change_amount) ELSE 0 END), 0) AS total_decrease,
			COALESCE(AVG(ABS(change_amount)), 0) AS avg_change_amount
		`, string(model.ChangeIncrease), string(model.ChangeDecrease)).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetStockMovement sums inbound and outbound quantities per calendar day in
// loc over [startDate, endDate). Days without movement are omitted.
func (r *historyRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time, loc *time.Location) ([]StockMovementData, error) {
	if loc == nil {
		loc = time.UTC
	}

	var entries []struct {
		CreatedAt    time.Time
		ChangeAmount int
	}
	err := r.db.WithContext(ctx).Model(&model.InventoryHistory{}).
		Select("created_at, change_amount").
		Where("created_at >= ? AND created_at < ?", startDate.UTC(), endDate.UTC()).
		Order("created_at ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	// rows arrive in time order, so days do too
	results := []StockMovementData{}
	for _, e := range entries {
		day := e.CreatedAt.In(loc).Format("2006-01-02")
		if len(results) == 0 || results[len(results)-1].Date != day {
			results = append(results, StockMovementData{Date: day})
		}
		last := &results[len(results)-1]
		if e.ChangeAmount > 0 {
			last.Inbound += int64(e.ChangeAmount)
		} else {
			last.Outbound += int64(-e.ChangeAmount)
		}
	}

	return results, nil
}

func (r *historyRepo) filtered(ctx context.Context, f HistoryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.InventoryHistory{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.ChangeType != "" {
		q = q.Where("change_type = ?", string(f.ChangeType))
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at < ?", f.To.UTC())
	}
	return q
}
