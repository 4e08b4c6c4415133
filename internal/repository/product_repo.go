package repository

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows product listings. Empty fields are ignored.
type ProductFilter struct {
	Search   string // substring of name, brand or category
	Category string // substring of category
	Status   string // model.StatusInStock | model.StatusOutOfStock
}

// ProductSort orders product listings by one of SortableProductFields.
type ProductSort struct {
	Field string
	Desc  bool
}

// SortableProductFields maps API sort keys to columns.
var SortableProductFields = map[string]string{
	"name":      "name",
	"category":  "category",
	"brand":     "brand",
	"stock":     "stock",
	"createdAt": "created_at",
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByNameExact(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter, sort ProductSort, page Page) ([]model.Product, int64, error)
	SearchByName(ctx context.Context, name string, limit int) ([]model.Product, error)
	FindAllForExport(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id uuid.UUID, apply func(*model.Product) error) (saved *model.Product, oldStock int, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	product.NameKey = model.NormalizeName(product.Name)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("CreatedBy").Preload("UpdatedBy").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByNameExact matches the whole name, ignoring case and surrounding space.
func (r *productRepo) FindByNameExact(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "name_key = ?", model.NormalizeName(name)).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter, sort ProductSort, page Page) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Search != "" {
		like := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, like, like, like)
	}
	if filter.Category != "" {
		q = q.Where(`LOWER(category) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filter.Category))+"%")
	}
	switch filter.Status {
	case model.StatusInStock:
		q = q.Where("stock > 0")
	case model.StatusOutOfStock:
		q = q.Where("stock <= 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := SortableProductFields[sort.Field]
	if !ok {
		column = "created_at"
	}

	var products []model.Product
	err := q.Preload("CreatedBy").Preload("UpdatedBy").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) SearchByName(ctx context.Context, name string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where(`name_key LIKE ? ESCAPE '\'`, "%"+escapeLike(model.NormalizeName(name))+"%").
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindAllForExport(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

// Categories returns every distinct category in use, unfiltered.
func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Update runs apply against the current row inside a transaction and saves
// the result. The saved row and the stock read before apply are returned so
// callers can audit the change without reading again. On postgres the row is
// locked for the duration.
func (r *productRepo) Update(ctx context.Context, id uuid.UUID, apply func(*model.Product) error) (*model.Product, int, error) {
	var (
		existing model.Product
		oldStock int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		if err := q.First(&existing, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		oldStock = existing.Stock

		if err := apply(&existing); err != nil {
			return err
		}
		existing.NameKey = model.NormalizeName(existing.Name)

		return translate(tx.Omit(clause.Associations).Save(&existing).Error)
	})
	if err != nil {
		return nil, 0, err
	}

	return &existing, oldStock, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
