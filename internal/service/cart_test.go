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

func newCartFixture(t *testing.T, stock int) (*CartService, *mockProductRepo, *model.Product) {
	t.Helper()
	productRepo := newMockProductRepo()
	cartRepo := newMockCartRepo(productRepo)
	svc := NewCartService(cartRepo, productRepo)

	product := &model.Product{
		SellerID: uuid.New(), CategoryID: uuid.New(),
		Name: "Ankole Bull", Price: decimal.NewFromInt(450000), Stock: stock,
		LivestockType: model.LivestockCattle, AnimalType: "bull", Active: true,
	}
	require.NoError(t, productRepo.Create(context.Background(), product))
	return svc, productRepo, product
}

func TestCartService_AddMergesAndClamps(t *testing.T) {
	svc, _, product := newCartFixture(t, 5)
	userID := uuid.New()
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)

	// Second add merges, then clamps to the 5 in stock.
	resp, err = svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(2250000)))
}

func TestCartService_AddRejectsUnavailable(t *testing.T) {
	svc, productRepo, product := newCartFixture(t, 0)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrOutOfStock)

	productRepo.products[product.ID].Stock = 3
	productRepo.products[product.ID].Active = false
	_, err = svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductInactive)

	_, err = svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	svc, _, product := newCartFixture(t, 10)
	userID := uuid.New()
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	itemID := resp.Items[0].ID

	resp, err = svc.UpdateItem(ctx, userID, itemID, dto.UpdateCartItemRequest{Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Items[0].Quantity)

	// Quantity above stock clamps.
	resp, err = svc.UpdateItem(ctx, userID, itemID, dto.UpdateCartItemRequest{Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Items[0].Quantity)

	// Zero removes the line.
	resp, err = svc.UpdateItem(ctx, userID, itemID, dto.UpdateCartItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = svc.UpdateItem(ctx, userID, itemID, dto.UpdateCartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	svc, _, product := newCartFixture(t, 10)
	userID := uuid.New()
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	resp, err = svc.RemoveItem(ctx, userID, resp.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalItems)

	_, err = svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, userID))

	got, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}
