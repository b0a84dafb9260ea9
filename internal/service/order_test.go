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
	"github.com/livestockhub/marketplace-api/internal/repository"
)

type orderFixture struct {
	svc      *OrderService
	products *mockProductRepo
	carts    *mockCartRepo
	orders   *mockOrderRepo
	notifier *recordingNotifier
	seller   uuid.UUID
	customer uuid.UUID
	product  *model.Product
}

func newOrderFixture(t *testing.T, stock int) *orderFixture {
	t.Helper()
	f := &orderFixture{
		products: newMockProductRepo(),
		notifier: &recordingNotifier{},
		seller:   uuid.New(),
		customer: uuid.New(),
	}
	f.carts = newMockCartRepo(f.products)
	f.orders = newMockOrderRepo(f.products, f.carts)
	f.svc = NewOrderService(f.orders, f.carts, f.products, f.notifier, nil, model.CancelFromAnyActive)

	f.product = &model.Product{
		SellerID: f.seller, CategoryID: uuid.New(),
		Name: "Ankole Bull", Price: decimal.NewFromInt(450000), Stock: stock,
		LivestockType: model.LivestockCattle, AnimalType: "bull", Active: true,
	}
	require.NoError(t, f.products.Create(context.Background(), f.product))
	return f
}

func (f *orderFixture) fillCart(t *testing.T, quantity int) {
	t.Helper()
	cart, err := f.carts.GetOrCreateCart(context.Background(), f.customer)
	require.NoError(t, err)
	require.NoError(t, f.carts.UpsertItem(context.Background(), &model.CartItem{
		CartID: cart.ID, ProductID: f.product.ID, Quantity: quantity,
	}))
}

func checkoutRequest() dto.CheckoutRequest {
	return dto.CheckoutRequest{
		ShippingAddress: "KG 11 Ave",
		ShippingCity:    "Kigali",
		CustomerPhone:   "0781234567",
		PaymentMethod:   model.PaymentMTN,
		MTNPhone:        "0781234567",
	}
}

func TestOrderService_Checkout(t *testing.T) {
	f := newOrderFixture(t, 10)
	f.fillCart(t, 3)

	resp, err := f.svc.Checkout(context.Background(), f.customer, checkoutRequest())
	require.NoError(t, err)

	assert.Len(t, resp.OrderNumber, 10)
	assert.Equal(t, model.StatusPending, resp.Status)
	assert.Equal(t, "+250781234567", resp.CustomerPhone)

	// Total equals the sum of quantity times unit price.
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1350000)))
	sum := decimal.Zero
	for _, item := range resp.Items {
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, resp.TotalAmount.Equal(sum))

	// Stock moved, cart is gone.
	assert.Equal(t, 7, f.products.products[f.product.ID].Stock)
	cart, _ := f.carts.GetOrCreateCart(context.Background(), f.customer)
	got, _ := f.carts.GetCartWithItems(context.Background(), cart.ID)
	assert.Empty(t, got.Items)

	events := f.notifier.ofType(model.NotifyOrderPlaced)
	require.Len(t, events, 1)
	assert.Equal(t, f.customer, events[0].UserID)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := newOrderFixture(t, 10)

	_, err := f.svc.Checkout(context.Background(), f.customer, checkoutRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_Checkout_MTNPhoneRequired(t *testing.T) {
	f := newOrderFixture(t, 10)
	f.fillCart(t, 1)

	req := checkoutRequest()
	req.MTNPhone = ""
	_, err := f.svc.Checkout(context.Background(), f.customer, req)
	assert.ErrorIs(t, err, ErrMTNPhoneRequired)

	// PayPal has no such requirement.
	req.PaymentMethod = model.PaymentPayPal
	_, err = f.svc.Checkout(context.Background(), f.customer, req)
	require.NoError(t, err)
}

func TestOrderService_Checkout_InsufficientStock(t *testing.T) {
	f := newOrderFixture(t, 2)
	f.fillCart(t, 2)
	// Stock shrank after the cart was filled.
	f.products.products[f.product.ID].Stock = 1

	_, err := f.svc.Checkout(context.Background(), f.customer, checkoutRequest())
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	// Nothing was placed and no notification went out.
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.notifier.events)
}

func TestOrderService_Checkout_LowStockAlert(t *testing.T) {
	f := newOrderFixture(t, 12)
	f.fillCart(t, 5)

	_, err := f.svc.Checkout(context.Background(), f.customer, checkoutRequest())
	require.NoError(t, err)

	// 12 - 5 = 7 is under the low stock threshold of 10.
	events := f.notifier.ofType(model.NotifyLowStock)
	require.Len(t, events, 1)
	assert.Equal(t, f.seller, events[0].UserID)
}

func placedOrder(t *testing.T, f *orderFixture) *dto.OrderResponse {
	t.Helper()
	f.fillCart(t, 2)
	resp, err := f.svc.Checkout(context.Background(), f.customer, checkoutRequest())
	require.NoError(t, err)
	f.notifier.events = nil
	return resp
}

func TestOrderService_StatusTransitions(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()

	// Seller walks the order forward.
	resp, err := f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, resp.Status)

	// Skipping ahead is allowed, going back is not.
	resp, err = f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "shipped")
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, resp.Status)

	_, err = f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "confirmed")
	assert.ErrorIs(t, err, ErrBadTransition)

	_, err = f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Each accepted transition notified the customer, naming both ends
	// of the move.
	confirmed := f.notifier.ofType(model.NotifyOrderConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "Order "+order.OrderNumber+" moved from pending to confirmed", confirmed[0].Message)

	shipped := f.notifier.ofType(model.NotifyOrderShipped)
	require.Len(t, shipped, 1)
	assert.Contains(t, shipped[0].Message, "from confirmed to shipped")
}

func TestOrderService_StatusScoping(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()

	// A stranger seller sees nothing.
	_, err := f.svc.UpdateStatus(ctx, order.ID, uuid.New(), model.RoleSeller, "confirmed")
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	// The customer may only cancel.
	_, err = f.svc.UpdateStatus(ctx, order.ID, f.customer, model.RoleCustomer, "confirmed")
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	resp, err := f.svc.UpdateStatus(ctx, order.ID, f.customer, model.RoleCustomer, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, resp.Status)

	// Cancelled is terminal, even for admins.
	_, err = f.svc.UpdateStatus(ctx, order.ID, uuid.New(), model.RoleAdmin, "confirmed")
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestOrderService_CancelFromShipped(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "shipped")
	require.NoError(t, err)

	// CancelFromAnyActive: shipped orders can still be cancelled.
	resp, err := f.svc.UpdateStatus(ctx, order.ID, uuid.New(), model.RoleAdmin, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, resp.Status)
}

func TestOrderService_StrictPolicyRejectsCancel(t *testing.T) {
	f := newOrderFixture(t, 10)
	strict := NewOrderService(f.orders, f.carts, f.products, f.notifier, nil, model.CancelStrictFlow)
	order := placedOrder(t, f)

	_, err := strict.UpdateStatus(context.Background(), order.ID, uuid.New(), model.RoleAdmin, "cancelled")
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestOrderService_ItemStatus(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()
	itemID := order.Items[0].ID

	// Only the owning seller or an admin may move an item.
	err := f.svc.UpdateItemStatus(ctx, itemID, uuid.New(), model.RoleSeller, "confirmed")
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	require.NoError(t, f.svc.UpdateItemStatus(ctx, itemID, f.seller, model.RoleSeller, "confirmed"))
	item, err := f.orders.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, item.Status)

	err = f.svc.UpdateItemStatus(ctx, itemID, f.seller, model.RoleSeller, "pending")
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestOrderService_GetByIDScoping(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()

	_, err := f.svc.GetByID(ctx, order.ID, f.customer, model.RoleCustomer)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, order.ID, f.seller, model.RoleSeller)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, order.ID, uuid.New(), model.RoleCustomer)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	_, err = f.svc.GetByID(ctx, uuid.New(), f.customer, model.RoleCustomer)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_SellerListCounters(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := placedOrder(t, f)
	ctx := context.Background()

	resp, err := f.svc.ListBySeller(ctx, f.seller)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pending)
	assert.Equal(t, 0, resp.InProgress)

	_, err = f.svc.UpdateStatus(ctx, order.ID, f.seller, model.RoleSeller, "processing")
	require.NoError(t, err)

	resp, err = f.svc.ListBySeller(ctx, f.seller)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Pending)
	assert.Equal(t, 1, resp.InProgress)
}
