package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=customer seller"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a token for customers; sellers registering get
// PendingApproval instead and log in only after an admin approves them.
type AuthResponse struct {
	Token           string       `json:"token,omitempty"`
	User            UserResponse `json:"user"`
	PendingApproval bool         `json:"pending_approval,omitempty"`
}

type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	Country        string    `json:"country,omitempty"`
	SellerApproved bool      `json:"seller_approved"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
}

type SellerProfileResponse struct {
	BusinessName         string          `json:"business_name"`
	BusinessRegistration string          `json:"business_registration,omitempty"`
	Description          string          `json:"description,omitempty"`
	Rating               decimal.Decimal `json:"rating"`
	TotalSales           int             `json:"total_sales"`
}

type UpdateSellerProfileRequest struct {
	BusinessName         *string `json:"business_name"`
	BusinessRegistration *string `json:"business_registration"`
	Description          *string `json:"description"`
}

// --- Categories ---

type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type CategoryResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	HasSubcategories bool       `json:"has_subcategories"`
}

type CategorySearchResponse struct {
	Results []CategoryResponse `json:"results"`
}

type SubcategoriesResponse struct {
	CategoryName  string             `json:"category_name"`
	Subcategories []CategoryResponse `json:"subcategories"`
}

type LivestockTypesResponse struct {
	Types []model.LivestockType `json:"types"`
}

type AnimalTypesResponse struct {
	Types []model.AnimalType `json:"types"`
}

// --- Products ---

type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Description     string          `json:"description" binding:"required"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	Stock           int             `json:"stock" binding:"min=0"`
	LivestockType   string          `json:"livestock_type" binding:"required"`
	AnimalType      string          `json:"animal_type" binding:"required"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	NewCategoryName string          `json:"new_category_name"`
	ParentCategory  *uuid.UUID      `json:"parent_category_id"`
	Images          []string        `json:"images" binding:"max=3"`
}

type UpdateProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Stock           *int             `json:"stock"`
	LivestockType   *string          `json:"livestock_type"`
	AnimalType      *string          `json:"animal_type"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	NewCategoryName string           `json:"new_category_name"`
	ParentCategory  *uuid.UUID       `json:"parent_category_id"`
	Images          []string         `json:"images"`
}

type ListProductsRequest struct {
	Page          int    `form:"page,default=1" binding:"min=1"`
	Limit         int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search        string `form:"q"`
	CategoryID    string `form:"category"`
	LivestockType string `form:"livestock_type"`
	AnimalType    string `form:"animal_type"`
	MinPrice      string `form:"min_price"`
	MaxPrice      string `form:"max_price"`
	Stock         string `form:"stock" binding:"omitempty,oneof=low out"`
	Status        string `form:"status" binding:"omitempty,oneof=active inactive"`
	Sort          string `form:"sort,default=created_at" binding:"oneof=name price stock_quantity created_at"`
	Order         string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID              uuid.UUID           `json:"id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	CategoryID      uuid.UUID           `json:"category_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Price           decimal.Decimal     `json:"price"`
	Stock           int                 `json:"stock"`
	LivestockType   model.LivestockType `json:"livestock_type"`
	AnimalType      string              `json:"animal_type"`
	AnimalTypeLabel string              `json:"animal_type_label"`
	Images          []string            `json:"images,omitempty"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

// --- Checkout / orders ---

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	ShippingCity    string `json:"shipping_city" binding:"required"`
	ShippingPhone   string `json:"shipping_phone"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	Notes           string `json:"notes"`
	PaymentMethod   string `json:"payment_method" binding:"required,oneof=mtn paypal"`
	MTNPhone        string `json:"mtn_phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"product_id"`
	ProductName string            `json:"product_name"`
	Quantity    int               `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	LineTotal   decimal.Decimal   `json:"line_total"`
	Status      model.OrderStatus `json:"status"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Status          model.OrderStatus   `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingCity    string              `json:"shipping_city"`
	ShippingPhone   string              `json:"shipping_phone,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

type SellerOrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Pending    int             `json:"pending"`
	InProgress int             `json:"in_progress"`
	Delivered  int             `json:"delivered"`
}

// --- Notifications ---

type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// --- Reports ---

type ReportRangeRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type TopProductEntry struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type MonthRevenueEntry struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SellerReportResponse struct {
	TotalRevenue   decimal.Decimal     `json:"total_revenue"`
	TotalOrders    int                 `json:"total_orders"`
	ProductsSold   int                 `json:"products_sold"`
	AvgOrderValue  decimal.Decimal     `json:"avg_order_value"`
	TopProducts    []TopProductEntry   `json:"top_products"`
	RevenueByMonth []MonthRevenueEntry `json:"revenue_by_month"`
}

type CategoryRevenueEntry struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
}

type TopSellerEntry struct {
	SellerID uuid.UUID       `json:"seller_id"`
	Username string          `json:"username"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
}

type AdminReportResponse struct {
	TotalRevenue      decimal.Decimal        `json:"total_revenue"`
	TotalOrders       int                    `json:"total_orders"`
	TotalUsers        int                    `json:"total_users"`
	TotalProducts     int                    `json:"total_products"`
	ActiveProducts    int                    `json:"active_products"`
	LowStockProducts  int                    `json:"low_stock_products"`
	PendingSellers    int                    `json:"pending_sellers"`
	RevenueByCategory []CategoryRevenueEntry `json:"revenue_by_category"`
	TopSellers        []TopSellerEntry       `json:"top_sellers"`
}

type AdminDashboardResponse struct {
	TotalUsers     int             `json:"total_users"`
	TotalSellers   int             `json:"total_sellers"`
	PendingSellers int             `json:"pending_sellers"`
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	RecentOrders   []OrderResponse `json:"recent_orders"`
	RecentUsers    []UserResponse  `json:"recent_users"`
}
