package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChangeType string

const (
	ChangeIncrease   ChangeType = "increase"
	ChangeDecrease   ChangeType = "decrease"
	ChangeAdjustment ChangeType = "adjustment"
)

// Ledger reasons used by the stock mutation call sites.
const (
	ReasonManual       = "Manual update"
	ReasonInitialStock = "Initial stock"
	ReasonStockUpdate  = "Stock update"
	ReasonCSVImport    = "CSV Import"
)

// ChangeTypeFor maps the sign of a stock delta to its change type.
func ChangeTypeFor(amount int) ChangeType {
	switch {
	case amount > 0:
		return ChangeIncrease
	case amount < 0:
		return ChangeDecrease
	default:
		return ChangeAdjustment
	}
}

// InventoryHistory is one immutable ledger entry. ProductName and UserName
// are copied at write time and never follow later renames.
type InventoryHistory struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_history_product_created,priority:1"`
	ProductName  string     `gorm:"type:varchar(255);not null"`
	OldQuantity  int        `gorm:"not null"`
	NewQuantity  int        `gorm:"not null"`
	ChangeAmount int        `gorm:"not null"`
	ChangeType   ChangeType `gorm:"type:varchar(20);not null;index"`
	Reason       string     `gorm:"type:varchar(255);not null"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserName     string     `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time  `gorm:"index:idx_history_product_created,priority:2"`

	// Display joins, loaded on query only
	Product *Product `gorm:"foreignKey:ProductID"`
	User    *User    `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (InventoryHistory) TableName() string {
	return "inventory_history"
}

// NewInventoryHistory builds an entry with the delta and change type derived
// from the two quantities.
func NewInventoryHistory(productID uuid.UUID, productName string, oldQty, newQty int, userID uuid.UUID, userName, reason string) *InventoryHistory {
	if reason == "" {
		reason = ReasonManual
	}
	amount := newQty - oldQty
	return &InventoryHistory{
		ProductID:    productID,
		ProductName:  productName,
		OldQuantity:  oldQty,
		NewQuantity:  newQty,
		ChangeAmount: amount,
		ChangeType:   ChangeTypeFor(amount),
		Reason:       reason,
		UserID:       userID,
		UserName:     userName,
	}
}

func (h *InventoryHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	// always stored as UTC
	if !h.CreatedAt.IsZero() {
		h.CreatedAt = h.CreatedAt.UTC()
	}
	return
}

// HistoryResponse is a ledger entry enriched with the current product and user.
type HistoryResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	OldQuantity  int             `json:"oldQuantity"`
	NewQuantity  int             `json:"newQuantity"`
	ChangeAmount int             `json:"changeAmount"`
	ChangeType   ChangeType      `json:"changeType"`
	Reason       string          `json:"reason"`
	UserID       uuid.UUID       `json:"userId"`
	UserName     string          `json:"userName"`
	CreatedAt    time.Time       `json:"createdAt"`
	Product      *ProductSummary `json:"product,omitempty"`
	User         *UserSummary    `json:"user,omitempty"`
}

// ToResponse converts InventoryHistory to HistoryResponse
func (h *InventoryHistory) ToResponse() HistoryResponse {
	return HistoryResponse{
		ID:           h.ID,
		ProductID:    h.ProductID,
		ProductName:  h.ProductName,
		OldQuantity:  h.OldQuantity,
		NewQuantity:  h.NewQuantity,
		ChangeAmount: h.ChangeAmount,
		ChangeType:   h.ChangeType,
		Reason:       h.Reason,
		UserID:       h.UserID,
		UserName:     h.UserName,
		CreatedAt:    h.CreatedAt,
		Product:      h.Product.Summary(),
		User:         h.User.Summary(),
	}
}
