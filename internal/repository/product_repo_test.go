package repository_test

import (
	"context"
	"errors"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T, repo repository.ProductRepository, products ...model.Product) []model.Product {
	t.Helper()
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		p := p
		require.NoError(t, repo.Create(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func TestProductRepoCreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	seedProducts(t, repo, model.Product{Name: "Widget", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 10})

	err := repo.Create(ctx, &model.Product{Name: "  widget ", Unit: "pcs", Category: "Tools", Brand: "Acme"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repo.FindByNameExact(ctx, "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)
	assert.Equal(t, model.StatusInStock, found.Status())

	_, err = repo.FindByNameExact(ctx, "Widgets")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepoList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	seedProducts(t, repo,
		model.Product{Name: "Hammer", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 5},
		model.Product{Name: "Rice", Unit: "kg", Category: "Food", Brand: "Farm", Stock: 0},
		model.Product{Name: "Drill", Unit: "pcs", Category: "Power Tools", Brand: "Bosch", Stock: 2},
		model.Product{Name: "100% Juice", Unit: "l", Category: "Food", Brand: "acme", Stock: 7},
	)

	t.Run("search matches name, brand or category", func(t *testing.T) {
		products, total, err := repo.List(ctx, repository.ProductFilter{Search: "ACME"}, repository.ProductSort{Field: "name"}, repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, products, 2)
		assert.Equal(t, "100% Juice", products[0].Name)
		assert.Equal(t, "Hammer", products[1].Name)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		_, total, err := repo.List(ctx, repository.ProductFilter{Search: "%"}, repository.ProductSort{}, repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("category substring and status", func(t *testing.T) {
		products, total, err := repo.List(ctx,
			repository.ProductFilter{Category: "tools", Status: model.StatusInStock},
			repository.ProductSort{Field: "stock", Desc: true},
			repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, "Hammer", products[0].Name)
		assert.Equal(t, "Drill", products[1].Name)
	})

	t.Run("out of stock", func(t *testing.T) {
		products, total, err := repo.List(ctx, repository.ProductFilter{Status: model.StatusOutOfStock}, repository.ProductSort{}, repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Rice", products[0].Name)
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		products, total, err := repo.List(ctx, repository.ProductFilter{}, repository.ProductSort{Field: "name"}, repository.Page{Number: 2, Limit: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		require.Len(t, products, 1)
		assert.Equal(t, "Rice", products[0].Name)
	})

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Power Tools", "Tools"}, categories)

	found, err := repo.SearchByName(ctx, "r", 20)
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestProductRepoUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	products := seedProducts(t, repo,
		model.Product{Name: "Widget", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 10},
		model.Product{Name: "Gadget", Unit: "pcs", Category: "Tools", Brand: "Acme", Stock: 1},
	)

	saved, oldStock, err := repo.Update(ctx, products[0].ID, func(p *model.Product) error {
		p.Stock = 3
		p.Name = "Widget XL"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, oldStock)
	assert.Equal(t, 3, saved.Stock)
	assert.Equal(t, "Widget XL", saved.Name)

	reloaded, err := repo.FindByID(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)
	assert.Equal(t, "widget xl", reloaded.NameKey)

	_, _, err = repo.Update(ctx, products[0].ID, func(p *model.Product) error {
		p.Name = "GADGET"
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	boom := errors.New("boom")
	_, _, err = repo.Update(ctx, products[0].ID, func(p *model.Product) error {
		p.Stock = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)
	reloaded, err = repo.FindByID(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)

	_, _, err = repo.Update(ctx, uuid.New(), func(p *model.Product) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepoDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	products := seedProducts(t, repo, model.Product{Name: "Widget", Unit: "pcs", Category: "Tools", Brand: "Acme"})

	require.NoError(t, repo.Delete(ctx, products[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, products[0].ID), repository.ErrNotFound)

	_, err := repo.FindByID(ctx, products[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
