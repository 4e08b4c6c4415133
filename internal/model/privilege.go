package model

// Privilege represents a permission that can be assigned to roles
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Privilege codes checked by the route middleware
const (
	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"
	PrivProductImport = "product:import"
	PrivProductExport = "product:export"
	PrivHistoryView   = "history:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivProductImport, Name: "Import Products"},
	{Code: PrivProductExport, Name: "Export Products"},
	{Code: PrivHistoryView, Name: "View Inventory History"},
}
