package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

// Map-backed fakes shared by the service tests.

type recordingNotifier struct {
	events []model.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event model.NotificationEvent) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) ofType(typ string) []model.NotificationEvent {
	var out []model.NotificationEvent
	for _, e := range n.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// --- users ---

type mockUserRepo struct {
	users    map[uuid.UUID]*model.User
	profiles map[uuid.UUID]*model.SellerProfile
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[uuid.UUID]*model.User),
		profiles: make(map[uuid.UUID]*model.SellerProfile),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.Active = true
	if user.Country == "" {
		user.Country = "Rwanda"
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) SetSellerApproved(_ context.Context, id uuid.UUID, approved bool) error {
	u, ok := m.users[id]
	if !ok || u.Role != model.RoleSeller {
		return fmt.Errorf("seller %s not found", id)
	}
	u.SellerApproved = approved
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.Active = active
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) CreateSellerProfile(_ context.Context, profile *model.SellerProfile) error {
	profile.ID = uuid.New()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) GetSellerProfile(_ context.Context, userID uuid.UUID) (*model.SellerProfile, error) {
	return m.profiles[userID], nil
}

func (m *mockUserRepo) UpdateSellerProfile(_ context.Context, profile *model.SellerProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

// --- categories ---

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) GetActiveByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range m.categories {
		if c.Active && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepo) ListRoots(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if c.Active && c.IsRoot() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) ListChildren(_ context.Context, parentID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if c.Active && c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Search(_ context.Context, query string, limit int) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if c.Active && strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, *c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	c, ok := m.categories[id]
	if !ok {
		return fmt.Errorf("category %s not found", id)
	}
	c.Active = active
	return nil
}

// --- products ---

type mockProductRepo struct {
	products  map[uuid.UUID]*model.Product
	hasOrders map[uuid.UUID]bool
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products:  make(map[uuid.UUID]*model.Product),
		hasOrders: make(map[uuid.UUID]bool),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range m.products {
		if f.SellerID != nil && p.SellerID != *f.SellerID {
			continue
		}
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.InactiveOnly && p.Active {
			continue
		}
		if f.LivestockType != "" && string(p.LivestockType) != f.LivestockType {
			continue
		}
		if f.AnimalType != "" && p.AnimalType != f.AnimalType {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.LowStock && p.Stock >= repository.LowStockThreshold {
			continue
		}
		if f.OutOfStock && p.Stock != 0 {
			continue
		}
		if len(f.CategoryIDs) > 0 {
			match := false
			for _, id := range f.CategoryIDs {
				if p.CategoryID == id {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return fmt.Errorf("product %s not found", product.ID)
	}
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s not found", id)
	}
	p.Active = active
	return nil
}

func (m *mockProductRepo) HasOrderItems(_ context.Context, id uuid.UUID) (bool, error) {
	return m.hasOrders[id], nil
}

// --- carts ---

type mockCartRepo struct {
	carts    map[uuid.UUID]*model.Cart // by user
	items    map[uuid.UUID]*model.CartItem
	products *mockProductRepo
}

func newMockCartRepo(products *mockProductRepo) *mockCartRepo {
	return &mockCartRepo{
		carts:    make(map[uuid.UUID]*model.Cart),
		items:    make(map[uuid.UUID]*model.CartItem),
		products: products,
	}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	m.carts[userID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	for _, cart := range m.carts {
		if cart.ID != cartID {
			continue
		}
		out := *cart
		out.Items = nil
		for _, item := range m.items {
			if item.CartID != cartID {
				continue
			}
			joined := *item
			if p, ok := m.products.products[item.ProductID]; ok {
				joined.ProductName = p.Name
				joined.UnitPrice = p.Price
				joined.Stock = p.Stock
			}
			out.Items = append(out.Items, joined)
		}
		return &out, nil
	}
	return nil, nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, item *model.CartItem) error {
	for _, existing := range m.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity = item.Quantity
			return nil
		}
	}
	item.ID = uuid.New()
	m.items[item.ID] = item
	return nil
}

func (m *mockCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

// --- orders ---

type mockOrderRepo struct {
	orders   map[uuid.UUID]*model.Order
	products *mockProductRepo
	carts    *mockCartRepo
}

func newMockOrderRepo(products *mockProductRepo, carts *mockCartRepo) *mockOrderRepo {
	return &mockOrderRepo{
		orders:   make(map[uuid.UUID]*model.Order),
		products: products,
		carts:    carts,
	}
}

func (m *mockOrderRepo) PlaceOrder(_ context.Context, order *model.Order, items []model.OrderItem, cartID uuid.UUID) error {
	// Mirrors the real transaction: stock check first, everything or nothing.
	for _, item := range items {
		p, ok := m.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			return fmt.Errorf("product %s: %w", item.ProductID, repository.ErrInsufficientStock)
		}
	}

	order.ID = uuid.New()
	order.OrderNumber = model.NewOrderNumber()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		p := m.products.products[items[i].ProductID]
		p.Stock -= items[i].Quantity
		items[i].ProductName = p.Name
		items[i].SellerID = p.SellerID
	}
	order.Items = items
	m.orders[order.ID] = order
	_ = m.carts.ClearCart(context.Background(), cartID)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		for _, item := range o.Items {
			if item.SellerID == sellerID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		out = append(out, *o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order %s not found", id)
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) GetItem(_ context.Context, itemID uuid.UUID) (*model.OrderItem, error) {
	for _, o := range m.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				cp := o.Items[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) UpdateItemStatus(_ context.Context, itemID uuid.UUID, status model.OrderStatus) error {
	for _, o := range m.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items[i].Status = status
				return nil
			}
		}
	}
	return fmt.Errorf("order item %s not found", itemID)
}

// --- notifications ---

type mockNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if _, ok := m.notifications[n.ID]; ok {
		return nil
	}
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return pgx.ErrNoRows
	}
	n.Read = true
	return nil
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
