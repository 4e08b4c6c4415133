package handler

import (
	"path/filepath"
	"strings"
	"time"

	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxImportFileSize = 5 * 1024 * 1024

type InventoryHandler struct {
	service service.InventoryService
	imports service.ImportService
}

func NewInventoryHandler(s service.InventoryService, imports service.ImportService) *InventoryHandler {
	return &InventoryHandler{service: s, imports: imports}
}

// GetProducts lists products
// GET /api/v1/products?page&limit&search&category&status&sortBy&sortOrder
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	page, limit, msg := pageParams(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	result, err := h.service.ListProducts(c.UserContext(), service.ProductQuery{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		return respondError(c, err, "Error fetching products")
	}

	return c.JSON(fiber.Map{
		"products":   productResponses(result.Products),
		"pagination": result.Pagination,
		"categories": result.Categories,
	})
}

// SearchProducts matches names containing ?name=
// GET /api/v1/products/search
func (h *InventoryHandler) SearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err, "Error searching products")
	}
	return c.JSON(fiber.Map{"products": productResponses(products)})
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), req, actor)
	if err != nil {
		return respondError(c, err, "Error creating product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product.ToResponse(),
	})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req service.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, req, actor)
	if err != nil {
		return respondError(c, err, "Error updating product")
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": updated.ToResponse(),
	})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	if err := h.service.DeleteProduct(c.UserContext(), productID); err != nil {
		return respondError(c, err, "Error deleting product")
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// ExportProducts streams the catalog as a CSV attachment
// GET /api/v1/products/export
func (h *InventoryHandler) ExportProducts(c *fiber.Ctx) error {
	var buf strings.Builder
	if err := h.imports.Export(c.UserContext(), &buf); err != nil {
		return respondError(c, err, "Error exporting products")
	}

	c.Attachment(service.ExportFilename(time.Now()))
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.SendString(buf.String())
}

type importResponse struct {
	Message string `json:"message"`
	*service.ImportResult
}

// ImportProducts reads the multipart field csvFile
// POST /api/v1/products/import
func (h *InventoryHandler) ImportProducts(c *fiber.Ctx) error {
	file, err := c.FormFile("csvFile")
	if err != nil {
		return badRequest(c, "CSV file is required")
	}
	if file.Size > maxImportFileSize {
		return badRequest(c, "CSV file must be at most 5 MB")
	}
	contentType := file.Header.Get(fiber.HeaderContentType)
	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") && !strings.HasPrefix(contentType, "text/csv") {
		return badRequest(c, "Only CSV files are allowed")
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, err, "Error importing products")
	}
	defer f.Close()

	result, err := h.imports.Import(c.UserContext(), f, actor)
	if err != nil {
		return respondError(c, err, "Error processing CSV file")
	}

	return c.JSON(importResponse{Message: "Import completed", ImportResult: result})
}

func productResponses(products []model.Product) []model.ProductResponse {
	out := make([]model.ProductResponse, len(products))
	for i := range products {
		out[i] = products[i].ToResponse()
	}
	return out
}
