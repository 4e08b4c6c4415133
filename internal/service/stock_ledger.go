package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Secondary write operations, used as log field and metric label.
const (
	OpLedgerAppend   = "ledger_append"
	OpHistoryCascade = "history_cascade"
)

const secondaryWriteTimeout = 5 * time.Second

// stockLedger applies the audit rule shared by every stock write: one entry
// per actual change, and a ledger failure never fails the product write.
type stockLedger struct {
	history repository.HistoryRepository
	log     *zap.Logger
}

func newStockLedger(history repository.HistoryRepository, log *zap.Logger) *stockLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &stockLedger{history: history, log: log}
}

// record appends an entry for product moving from oldQty to its current
// stock. Nothing is written when the quantity did not change. The returned
// entry is nil when nothing was written.
func (l *stockLedger) record(ctx context.Context, product *model.Product, oldQty int, actor Actor, reason string) *model.InventoryHistory {
	if product.Stock == oldQty {
		return nil
	}

	entry := model.NewInventoryHistory(product.ID, product.Name, oldQty, product.Stock, actor.ID, actor.Name, reason)

	// the product is already committed; a cancelled request must not drop its audit entry
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), secondaryWriteTimeout)
	defer cancel()

	if err := l.history.Append(ctx, entry); err != nil {
		l.swallow(&SecondaryWriteFailure{Operation: OpLedgerAppend, ProductID: product.ID, Err: err})
		return nil
	}

	metrics.LedgerEntries.WithLabelValues(string(entry.ChangeType)).Inc()
	return entry
}

// purge removes the history of a deleted product.
func (l *stockLedger) purge(ctx context.Context, productID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), secondaryWriteTimeout)
	defer cancel()

	removed, err := l.history.DeleteAllForProduct(ctx, productID)
	if err != nil {
		l.swallow(&SecondaryWriteFailure{Operation: OpHistoryCascade, ProductID: productID, Err: err})
		return
	}
	l.log.Debug("history removed with product", zap.Stringer("product_id", productID), zap.Int64("entries", removed))
}

func (l *stockLedger) swallow(f *SecondaryWriteFailure) {
	metrics.SecondaryWriteFailures.WithLabelValues(f.Operation).Inc()
	l.log.Error("secondary write failed",
		zap.String("operation", f.Operation),
		zap.Stringer("product_id", f.ProductID),
		zap.Error(f.Err),
	)
}
