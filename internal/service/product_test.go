package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
)

func newProductFixture(t *testing.T) (*ProductService, *mockProductRepo, *mockCategoryRepo, uuid.UUID) {
	t.Helper()
	productRepo := newMockProductRepo()
	categoryRepo := newMockCategoryRepo()
	catalog := NewCatalogService(categoryRepo)
	svc := NewProductService(productRepo, catalog, nil)

	category := &model.Category{Name: "Cattle", Active: true}
	require.NoError(t, categoryRepo.Create(context.Background(), category))
	return svc, productRepo, categoryRepo, category.ID
}

func TestProductService_Create(t *testing.T) {
	svc, _, _, categoryID := newProductFixture(t)
	sellerID := uuid.New()

	resp, err := svc.Create(context.Background(), sellerID, dto.CreateProductRequest{
		Name: "Ankole Bull", Description: "Breeding bull",
		Price: decimal.NewFromInt(450000), Stock: 3,
		LivestockType: "cattle", AnimalType: "bull",
		CategoryID: &categoryID,
	})
	require.NoError(t, err)
	assert.Equal(t, sellerID, resp.SellerID)
	assert.Equal(t, "Bull", resp.AnimalTypeLabel)
	assert.True(t, resp.Active)
}

func TestProductService_Create_InvalidTaxonomy(t *testing.T) {
	svc, _, _, categoryID := newProductFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateProductRequest{
		Name: "Hen", Description: "Laying hen",
		Price: decimal.NewFromInt(5000), Stock: 10,
		LivestockType: "cattle", AnimalType: "hen",
		CategoryID: &categoryID,
	})
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)
}

func TestProductService_Create_CategoryChoice(t *testing.T) {
	svc, _, categoryRepo, categoryID := newProductFixture(t)
	sellerID := uuid.New()

	base := dto.CreateProductRequest{
		Name: "Goat", Description: "Boer goat",
		Price: decimal.NewFromInt(80000), Stock: 2,
		LivestockType: "goats", AnimalType: "buck",
	}

	// Neither category_id nor new_category_name.
	_, err := svc.Create(context.Background(), sellerID, base)
	assert.ErrorIs(t, err, ErrAmbiguousCategory)

	// Both at once.
	both := base
	both.CategoryID = &categoryID
	both.NewCategoryName = "Goats"
	_, err = svc.Create(context.Background(), sellerID, both)
	assert.ErrorIs(t, err, ErrAmbiguousCategory)

	// A new name resolves to a fresh category.
	named := base
	named.NewCategoryName = "Goats"
	resp, err := svc.Create(context.Background(), sellerID, named)
	require.NoError(t, err)
	created, err := categoryRepo.GetActiveByName(context.Background(), "Goats")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, resp.CategoryID)
}

func TestProductService_Update_OwnershipAndTaxonomy(t *testing.T) {
	svc, productRepo, _, categoryID := newProductFixture(t)
	sellerID := uuid.New()

	product := &model.Product{
		SellerID: sellerID, CategoryID: categoryID,
		Name: "Cow", Description: "Dairy cow",
		Price: decimal.NewFromInt(300000), Stock: 1,
		LivestockType: model.LivestockCattle, AnimalType: "cow", Active: true,
	}
	require.NoError(t, productRepo.Create(context.Background(), product))

	// Another seller cannot touch it.
	name := "Stolen"
	_, err := svc.Update(context.Background(), product.ID, uuid.New(), false, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProductAccessDenied)

	// Changing livestock type without a matching animal type fails.
	lt := "poultry"
	_, err = svc.Update(context.Background(), product.ID, sellerID, false, dto.UpdateProductRequest{LivestockType: &lt})
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)

	// Changing both together succeeds.
	at := "hen"
	resp, err := svc.Update(context.Background(), product.ID, sellerID, false, dto.UpdateProductRequest{
		LivestockType: &lt, AnimalType: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LivestockPoultry, resp.LivestockType)

	// Admin bypasses ownership.
	_, err = svc.Update(context.Background(), product.ID, uuid.New(), true, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
}

func TestProductService_Delete_RefusedWhenOrdered(t *testing.T) {
	svc, productRepo, _, categoryID := newProductFixture(t)
	sellerID := uuid.New()

	product := &model.Product{
		SellerID: sellerID, CategoryID: categoryID,
		Name: "Pig", Description: "Large white",
		Price: decimal.NewFromInt(120000), Stock: 1,
		LivestockType: model.LivestockPigs, AnimalType: "boar", Active: true,
	}
	require.NoError(t, productRepo.Create(context.Background(), product))
	productRepo.hasOrders[product.ID] = true

	err := svc.Delete(context.Background(), product.ID, sellerID, false)
	assert.ErrorIs(t, err, ErrProductHasOrders)

	// Deactivation is the way out.
	require.NoError(t, svc.SetActive(context.Background(), product.ID, sellerID, false, false))
	got, err := productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestProductService_List_SubtreeFilter(t *testing.T) {
	svc, productRepo, categoryRepo, rootID := newProductFixture(t)
	ctx := context.Background()

	child := &model.Category{Name: "Dairy Cattle", ParentID: &rootID, Active: true}
	require.NoError(t, categoryRepo.Create(ctx, child))

	inRoot := &model.Product{
		SellerID: uuid.New(), CategoryID: rootID, Name: "Bull",
		Price: decimal.NewFromInt(1), Stock: 1,
		LivestockType: model.LivestockCattle, AnimalType: "bull", Active: true,
	}
	inChild := &model.Product{
		SellerID: uuid.New(), CategoryID: child.ID, Name: "Cow",
		Price: decimal.NewFromInt(1), Stock: 1,
		LivestockType: model.LivestockCattle, AnimalType: "cow", Active: true,
	}
	require.NoError(t, productRepo.Create(ctx, inRoot))
	require.NoError(t, productRepo.Create(ctx, inChild))

	resp, err := svc.List(ctx, dto.ListProductsRequest{
		Page: 1, Limit: 20, CategoryID: rootID.String(),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = svc.List(ctx, dto.ListProductsRequest{
		Page: 1, Limit: 20, CategoryID: child.ID.String(),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestProductService_List_BadFilterValues(t *testing.T) {
	svc, _, _, _ := newProductFixture(t)

	_, err := svc.List(context.Background(), dto.ListProductsRequest{
		Page: 1, Limit: 20, MinPrice: "cheap",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = svc.List(context.Background(), dto.ListProductsRequest{
		Page: 1, Limit: 20, CategoryID: "not-a-uuid",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
