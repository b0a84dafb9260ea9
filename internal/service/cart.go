package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrProductInactive  = errors.New("product not available")
	ErrOutOfStock       = errors.New("product out of stock")
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(cart), nil
}

// AddItem merges the requested quantity into any existing line for the
// product, clamped to the stock available right now.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*dto.CartResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.Active {
		return nil, ErrProductInactive
	}
	if product.Stock == 0 {
		return nil, ErrOutOfStock
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	for _, item := range cart.Items {
		if item.ProductID == req.ProductID {
			quantity += item.Quantity
			break
		}
	}
	if quantity > product.Stock {
		quantity = product.Stock
	}

	err = s.cartRepo.UpsertItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: req.ProductID, Quantity: quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

// UpdateItem sets the line quantity; zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	var item *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			item = &cart.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	if req.Quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
			return nil, fmt.Errorf("delete cart item: %w", err)
		}
		return s.Get(ctx, userID)
	}

	quantity := req.Quantity
	if quantity > item.Stock {
		quantity = item.Stock
	}
	err = s.cartRepo.UpsertItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: item.ProductID, Quantity: quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) loadCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	withItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	return withItems, nil
}

func toCartResponse(cart *model.Cart) *dto.CartResponse {
	resp := &dto.CartResponse{
		ID:         cart.ID,
		Items:      make([]dto.CartItemResponse, 0, len(cart.Items)),
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
	for _, item := range cart.Items {
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.ProductName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return resp
}
