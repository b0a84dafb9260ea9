package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	Password       string
	Role           string
	Phone          string
	Address        string
	City           string
	Country        string
	SellerApproved bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type SellerProfile struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	BusinessName         string
	BusinessRegistration string
	Description          string
	Rating               decimal.Decimal
	TotalSales           int
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	ParentID    *uuid.UUID
	Active      bool
	CreatedAt   time.Time
}

func (c *Category) IsRoot() bool { return c.ParentID == nil }

type Product struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	CategoryID    uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Stock         int
	LivestockType LivestockType
	AnimalType    string
	Images        []string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from products for display and totals.
	ProductName string
	UnitPrice   decimal.Decimal
	Stock       int
}

const (
	PaymentMTN    = "mtn"
	PaymentPayPal = "paypal"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	OrderNumber     string
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentMethod   string
	MTNPhone        string
	PaymentStatus   string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    string
	ShippingPhone   string
	Notes           string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Status    OrderStatus
	UpdatedAt time.Time

	// Joined from products for display and seller scoping.
	ProductName string
	SellerID    uuid.UUID
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

const (
	NotifyOrderPlaced     = "order_placed"
	NotifyOrderConfirmed  = "order_confirmed"
	NotifyOrderProcessing = "order_processing"
	NotifyOrderShipped    = "order_shipped"
	NotifyOrderDelivered  = "order_delivered"
	NotifyOrderCancelled  = "order_cancelled"
	NotifyLowStock        = "low_stock"
	NotifyNewSeller       = "new_seller"
	NotifySellerApproved  = "seller_approved"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Title     string
	Message   string
	OrderID   *uuid.UUID
	Read      bool
	CreatedAt time.Time
}

// NotificationEvent is the wire format published to the notification queue.
type NotificationEvent struct {
	ID      uuid.UUID  `json:"id"`
	UserID  uuid.UUID  `json:"user_id"`
	Type    string     `json:"type"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}
