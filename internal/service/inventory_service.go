package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultProductLimit = 10
	searchResultLimit   = 20
)

type CreateProductInput struct {
	Name     string     `json:"name" validate:"required,max=255"`
	Unit     string     `json:"unit" validate:"required,max=50"`
	Category string     `json:"category" validate:"required,max=255"`
	Brand    string     `json:"brand" validate:"required,max=255"`
	Stock    StockValue `json:"stock" validate:"min=0"`
	Image    string     `json:"image"`
}

// UpdateProductInput is a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name     *string    `json:"name"`
	Unit     *string    `json:"unit"`
	Category *string    `json:"category"`
	Brand    *string    `json:"brand"`
	Image    *string    `json:"image"`
	Stock    StockInput `json:"stock"`
}

type ProductQuery struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	Status    string
	SortBy    string
	SortOrder string
}

type ProductPage struct {
	Products   []model.Product
	Pagination Pagination
	Categories []string
}

type InventoryService interface {
	CreateProduct(ctx context.Context, input CreateProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
	SearchProducts(ctx context.Context, name string) ([]model.Product, error)
	FindByNameExact(ctx context.Context, name string) (*model.Product, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	ledger      *stockLedger
	categories  *cache.Categories
	log         *zap.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, hRepo repository.HistoryRepository, categories *cache.Categories, log *zap.Logger) InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &inventoryService{
		productRepo: pRepo,
		ledger:      newStockLedger(hRepo, log),
		categories:  categories,
		log:         log,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, input CreateProductInput, actor Actor) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	input.Category = strings.TrimSpace(input.Category)
	input.Brand = strings.TrimSpace(input.Brand)
	input.Image = strings.TrimSpace(input.Image)

	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		return nil, &ValidationError{Field: errs[0].FailedField, Message: errs[0].Message(), Details: errs}
	}

	if err := s.ensureNameAvailable(ctx, input.Name, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Unit:        input.Unit,
		Category:    input.Category,
		Brand:       input.Brand,
		Stock:       int(input.Stock),
		Image:       input.Image,
		CreatedByID: actor.ID,
		UpdatedByID: actor.ID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Name: input.Name}
		}
		return nil, err
	}

	s.ledger.record(ctx, product, 0, actor, model.ReasonInitialStock)
	s.invalidateCategories(ctx)

	return s.reload(ctx, product), nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput, actor Actor) (*model.Product, error) {
	if err := normalizeUpdate(&input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := s.ensureNameAvailable(ctx, *input.Name, id); err != nil {
			return nil, err
		}
	}

	var attemptedName string
	saved, oldStock, err := s.productRepo.Update(ctx, id, func(p *model.Product) error {
		if input.Name != nil {
			p.Name = *input.Name
		}
		if input.Unit != nil {
			p.Unit = *input.Unit
		}
		if input.Category != nil {
			p.Category = *input.Category
		}
		if input.Brand != nil {
			p.Brand = *input.Brand
		}
		if input.Image != nil {
			p.Image = *input.Image
		}
		if input.Stock.Set {
			p.Stock = input.Stock.Value
		}
		p.UpdatedByID = actor.ID
		attemptedName = p.Name
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, &NotFoundError{Resource: "product", ID: id.String()}
	case errors.Is(err, repository.ErrDuplicate):
		return nil, &ConflictError{Name: attemptedName}
	case err != nil:
		return nil, err
	}

	// committed: from here on nothing may fail the update
	s.ledger.record(ctx, saved, oldStock, actor, model.ReasonStockUpdate)
	if input.Category != nil {
		s.invalidateCategories(ctx)
	}

	return s.reload(ctx, saved), nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: id.String()}
		}
		return err
	}

	s.ledger.purge(ctx, id)
	s.invalidateCategories(ctx)
	return nil
}

func (s *inventoryService) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	page, err := pageFor(query.Page, query.Limit, defaultProductLimit)
	if err != nil {
		return nil, err
	}

	switch query.Status {
	case "", model.StatusInStock, model.StatusOutOfStock:
	default:
		return nil, invalid("status", `must be "In Stock" or "Out of Stock"`)
	}

	sort := repository.ProductSort{Field: "createdAt", Desc: true}
	if query.SortBy != "" {
		if _, ok := repository.SortableProductFields[query.SortBy]; !ok {
			return nil, invalid("sortBy", "invalid sort field")
		}
		sort.Field = query.SortBy
	}
	switch strings.ToLower(query.SortOrder) {
	case "", "desc":
	case "asc":
		sort.Desc = false
	default:
		return nil, invalid("sortOrder", "must be asc or desc")
	}

	filter := repository.ProductFilter{
		Search:   strings.TrimSpace(query.Search),
		Category: strings.TrimSpace(query.Category),
		Status:   query.Status,
	}
	products, total, err := s.productRepo.List(ctx, filter, sort, page)
	if err != nil {
		return nil, err
	}

	categories, err := s.listCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Pagination: newPagination(page, total),
		Categories: categories,
	}, nil
}

func (s *inventoryService) SearchProducts(ctx context.Context, name string) ([]model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "search name parameter is required")
	}
	return s.productRepo.SearchByName(ctx, name, searchResultLimit)
}

// FindByNameExact returns nil without error when no product has the name.
func (s *inventoryService) FindByNameExact(ctx context.Context, name string) (*model.Product, error) {
	product, err := s.productRepo.FindByNameExact(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return product, err
}

// ensureNameAvailable fails with ConflictError when a product other than
// self already uses name.
func (s *inventoryService) ensureNameAvailable(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.FindByNameExact(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return &ConflictError{Name: name}
	}
	return nil
}

func (s *inventoryService) reload(ctx context.Context, product *model.Product) *model.Product {
	full, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		s.log.Warn("reload after write failed", zap.Stringer("product_id", product.ID), zap.Error(err))
		return product
	}
	return full
}

func (s *inventoryService) listCategories(ctx context.Context) ([]string, error) {
	if categories, ok := s.categories.Get(ctx); ok {
		return categories, nil
	}

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Set(ctx, categories); err != nil {
		s.log.Warn("category cache write failed", zap.Error(err))
	}
	return categories, nil
}

func (s *inventoryService) invalidateCategories(ctx context.Context) {
	if err := s.categories.Invalidate(ctx); err != nil {
		s.log.Warn("category cache invalidation failed", zap.Error(err))
	}
}

// normalizeUpdate trims present fields and rejects empty or negative ones.
func normalizeUpdate(input *UpdateProductInput) error {
	required := []struct {
		field string
		value *string
		max   int
	}{
		{"name", input.Name, 255},
		{"unit", input.Unit, 50},
		{"category", input.Category, 255},
		{"brand", input.Brand, 255},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return invalid(f.field, "cannot be empty")
		}
		if len(*f.value) > f.max {
			return invalid(f.field, "is too long")
		}
	}
	if input.Image != nil {
		*input.Image = strings.TrimSpace(*input.Image)
	}
	if input.Stock.Set && input.Stock.Value < 0 {
		return invalid("stock", "must be a non-negative integer")
	}
	return nil
}
