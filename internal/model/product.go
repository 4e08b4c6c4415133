package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// StatusFor derives the product status from a stock level.
func StatusFor(stock int) string {
	if stock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

// NormalizeName is the case-insensitive identity of a product name, stored
// in Product.NameKey under a unique index.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Product is a catalog record. Status is never stored; see Status.
type Product struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null"`
	NameKey  string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Unit     string `gorm:"type:varchar(50);not null"`
	Category string `gorm:"type:varchar(255);not null;index"`
	Brand    string `gorm:"type:varchar(255);not null"`
	Stock    int    `gorm:"not null;default:0;index"`
	Image    string `gorm:"type:text;not null;default:''"`

	// User tracking
	CreatedByID uuid.UUID `gorm:"type:uuid"`
	UpdatedByID uuid.UUID `gorm:"type:uuid"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID"`
	UpdatedBy   *User     `gorm:"foreignKey:UpdatedByID"`
}

// Status is computed from Stock on every read.
func (p *Product) Status() string {
	return StatusFor(p.Stock)
}

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Unit      string       `json:"unit"`
	Category  string       `json:"category"`
	Brand     string       `json:"brand"`
	Stock     int          `json:"stock"`
	Status    string       `json:"status"`
	Image     string       `json:"image"`
	CreatedBy *UserSummary `json:"createdBy,omitempty"`
	UpdatedBy *UserSummary `json:"updatedBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		Category:  p.Category,
		Brand:     p.Brand,
		Stock:     p.Stock,
		Status:    p.Status(),
		Image:     p.Image,
		CreatedBy: p.CreatedBy.Summary(),
		UpdatedBy: p.UpdatedBy.Summary(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProductSummary is the product enrichment attached to ledger entries.
type ProductSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Brand    string    `json:"brand"`
	Image    string    `json:"image"`
}

// Summary returns nil for a nil product.
func (p *Product) Summary() *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{ID: p.ID, Name: p.Name, Category: p.Category, Brand: p.Brand, Image: p.Image}
}
