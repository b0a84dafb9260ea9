package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrMTNPhoneRequired  = errors.New("mtn phone required for mtn payment")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrBadTransition     = errors.New("status transition not allowed")
)

type OrderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	notifier     Notifier
	redisClient  *redis.Client
	cancelPolicy model.CancelPolicy
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, notifier Notifier, redisClient *redis.Client, cancelPolicy model.CancelPolicy) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		notifier:     notifier,
		redisClient:  redisClient,
		cancelPolicy: cancelPolicy,
	}
}

// Checkout converts the user's cart into an order. Order row, item rows,
// stock decrements and the cart wipe all commit in a single transaction;
// any failure leaves everything untouched.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.OrderResponse, error) {
	customerPhone, err := NormalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	shippingPhone, err := NormalizePhone(req.ShippingPhone)
	if err != nil {
		return nil, err
	}
	var mtnPhone string
	if req.PaymentMethod == model.PaymentMTN {
		if req.MTNPhone == "" {
			return nil, ErrMTNPhoneRequired
		}
		if mtnPhone, err = NormalizePhone(req.MTNPhone); err != nil {
			return nil, err
		}
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	cartWithItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if cartWithItems == nil || len(cartWithItems.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Prices are snapshotted from the product rows at checkout time, not
	// from whatever the cart displayed earlier.
	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(cartWithItems.Items))
	for _, ci := range cartWithItems.Items {
		product, err := s.productRepo.GetByID(ctx, ci.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil || !product.Active {
			return nil, fmt.Errorf("product %s: %w", ci.ProductID, ErrProductInactive)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: ci.ProductID,
			Quantity:  ci.Quantity,
			Price:     product.Price,
			Status:    model.StatusPending,
		})
	}

	order := &model.Order{
		CustomerID:      userID,
		TotalAmount:     total,
		Status:          model.StatusPending,
		PaymentMethod:   req.PaymentMethod,
		MTNPhone:        mtnPhone,
		PaymentStatus:   model.PaymentStatusPending,
		CustomerPhone:   customerPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingPhone:   shippingPhone,
		Notes:           req.Notes,
	}
	if err := s.orderRepo.PlaceOrder(ctx, order, items, cart.ID); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	// Stock just changed under the cached product entries.
	if s.redisClient != nil {
		for _, item := range items {
			s.redisClient.Del(ctx, "product:"+item.ProductID.String())
		}
	}

	s.notifier.Notify(ctx, placedEvent(userID, order.ID, order.OrderNumber))
	s.notifyLowStock(ctx, items)

	placed, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	resp := toOrderResponse(placed)
	return &resp, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID, actorID uuid.UUID, role string) (*dto.OrderResponse, error) {
	order, err := s.authorizedOrder(ctx, orderID, actorID, role)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &dto.OrderListResponse{Orders: toOrderResponses(orders), Total: len(orders)}, nil
}

// ListBySeller returns orders containing the seller's products, with the
// dashboard counters the seller UI groups by.
func (s *OrderService) ListBySeller(ctx context.Context, sellerID uuid.UUID) (*dto.SellerOrderListResponse, error) {
	orders, err := s.orderRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	resp := &dto.SellerOrderListResponse{Orders: toOrderResponses(orders)}
	for _, o := range orders {
		switch o.Status {
		case model.StatusPending:
			resp.Pending++
		case model.StatusConfirmed, model.StatusProcessing, model.StatusShipped:
			resp.InProgress++
		case model.StatusDelivered:
			resp.Delivered++
		}
	}
	return resp, nil
}

func (s *OrderService) ListAll(ctx context.Context, limit int) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &dto.OrderListResponse{Orders: toOrderResponses(orders), Total: len(orders)}, nil
}

// UpdateStatus moves an order along the fulfilment flow. Sellers may only
// touch orders containing their products, customers may only cancel their
// own orders, admins may do anything the transition rules allow.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, actorID uuid.UUID, role string, status string) (*dto.OrderResponse, error) {
	to := model.OrderStatus(status)
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.authorizedOrder(ctx, orderID, actorID, role)
	if err != nil {
		return nil, err
	}
	if role == model.RoleCustomer && to != model.StatusCancelled {
		return nil, ErrOrderAccessDenied
	}
	if !model.CanTransition(order.Status, to, s.cancelPolicy) {
		return nil, fmt.Errorf("%w: %s to %s", ErrBadTransition, order.Status, to)
	}

	if order.Status != to {
		prev := order.Status
		if err := s.orderRepo.UpdateStatus(ctx, orderID, to); err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
		order.Status = to
		s.notifier.Notify(ctx, statusEvent(order.CustomerID, order.ID, order.OrderNumber, prev, to))
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

// UpdateItemStatus moves one line of an order, for sellers fulfilling
// their share of a multi-seller order.
func (s *OrderService) UpdateItemStatus(ctx context.Context, itemID, actorID uuid.UUID, role string, status string) error {
	to := model.OrderStatus(status)
	if !to.Valid() {
		return ErrInvalidStatus
	}

	item, err := s.orderRepo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get order item: %w", err)
	}
	if item == nil {
		return ErrOrderNotFound
	}
	if role != model.RoleAdmin && item.SellerID != actorID {
		return ErrOrderAccessDenied
	}
	if !model.CanTransition(item.Status, to, s.cancelPolicy) {
		return fmt.Errorf("%w: %s to %s", ErrBadTransition, item.Status, to)
	}
	if item.Status == to {
		return nil
	}
	prev := item.Status
	if err := s.orderRepo.UpdateItemStatus(ctx, itemID, to); err != nil {
		return fmt.Errorf("update item status: %w", err)
	}

	order, err := s.orderRepo.GetByID(ctx, item.OrderID)
	if err != nil || order == nil {
		return nil
	}
	s.notifier.Notify(ctx, statusEvent(order.CustomerID, order.ID, order.OrderNumber, prev, to))
	return nil
}

func (s *OrderService) authorizedOrder(ctx context.Context, orderID, actorID uuid.UUID, role string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	switch role {
	case model.RoleAdmin:
		return order, nil
	case model.RoleSeller:
		for _, item := range order.Items {
			if item.SellerID == actorID {
				return order, nil
			}
		}
	default:
		if order.CustomerID == actorID {
			return order, nil
		}
	}
	return nil, ErrOrderAccessDenied
}

func (s *OrderService) notifyLowStock(ctx context.Context, items []model.OrderItem) {
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil || product == nil {
			continue
		}
		if product.Stock >= repository.LowStockThreshold {
			continue
		}
		s.notifier.Notify(ctx, model.NotificationEvent{
			ID:      uuid.New(),
			UserID:  product.SellerID,
			Type:    model.NotifyLowStock,
			Title:   "Low stock",
			Message: fmt.Sprintf("%s is down to %d in stock", product.Name, product.Stock),
		})
	}
}

func statusNotifyType(s model.OrderStatus) string {
	switch s {
	case model.StatusConfirmed:
		return model.NotifyOrderConfirmed
	case model.StatusProcessing:
		return model.NotifyOrderProcessing
	case model.StatusShipped:
		return model.NotifyOrderShipped
	case model.StatusDelivered:
		return model.NotifyOrderDelivered
	case model.StatusCancelled:
		return model.NotifyOrderCancelled
	default:
		return model.NotifyOrderPlaced
	}
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   item.TotalPrice(),
			Status:      item.Status,
		})
	}
	return dto.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingPhone:   o.ShippingPhone,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}
