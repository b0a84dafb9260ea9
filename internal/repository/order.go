package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/livestockhub/marketplace-api/internal/model"
)

var (
	// ErrInsufficientStock aborts checkout when a compare-and-decrement
	// finds less stock than a cart line requests.
	ErrInsufficientStock = errors.New("insufficient stock")
)

const orderNumberAttempts = 5

// newOrderNumber is a hook so tests can force number collisions.
var newOrderNumber = model.NewOrderNumber

type OrderRepository interface {
	// PlaceOrder converts a cart into an order atomically: it inserts the
	// order (retrying order-number collisions), snapshots the items,
	// decrements stock with a guard, and clears the cart. Any failing step
	// rolls the whole conversion back.
	PlaceOrder(ctx context.Context, order *model.Order, items []model.OrderItem, cartID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	// ListBySeller returns orders containing at least one of the seller's products.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*model.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status model.OrderStatus) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, customer_id, order_number, total_amount, status, payment_method,
	mtn_phone, payment_status, customer_phone, shipping_address, shipping_city,
	shipping_phone, notes, created_at, updated_at`

func (r *pgOrderRepo) PlaceOrder(ctx context.Context, order *model.Order, items []model.OrderItem, cartID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertOrderWithNumber(ctx, tx, order); err != nil {
		return err
	}

	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
		items[i].Status = model.StatusPending
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price, status, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
			items[i].ID, items[i].OrderID, items[i].ProductID,
			items[i].Quantity, items[i].Price, items[i].Status,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
			items[i].ProductID, items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("product %s: %w", items[i].ProductID, ErrInsufficientStock)
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	order.Items = items
	return nil
}

func insertOrderWithNumber(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	order.ID = uuid.New()
	order.Status = model.StatusPending
	order.PaymentStatus = model.PaymentStatusPending

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()

		// A duplicate number aborts the enclosing transaction, so each
		// attempt runs inside its own savepoint.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin savepoint: %w", err)
		}
		err = sp.QueryRow(ctx,
			`INSERT INTO orders (id, customer_id, order_number, total_amount, status, payment_method,
				mtn_phone, payment_status, customer_phone, shipping_address, shipping_city,
				shipping_phone, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			 RETURNING created_at, updated_at`,
			order.ID, order.CustomerID, order.OrderNumber, order.TotalAmount, order.Status,
			order.PaymentMethod, order.MTNPhone, order.PaymentStatus, order.CustomerPhone,
			order.ShippingAddress, order.ShippingCity, order.ShippingPhone, order.Notes,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("release savepoint: %w", err)
			}
			return nil
		}
		_ = sp.Rollback(ctx)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
			continue // order number collision, draw again
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return fmt.Errorf("insert order: exhausted %d order number attempts", orderNumberAttempts)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	).Scan(
		&order.ID, &order.CustomerID, &order.OrderNumber, &order.TotalAmount, &order.Status,
		&order.PaymentMethod, &order.MTNPhone, &order.PaymentStatus, &order.CustomerPhone,
		&order.ShippingAddress, &order.ShippingCity, &order.ShippingPhone, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT oi.id, oi.product_id, oi.quantity, oi.price, oi.status, oi.updated_at,
				p.name, p.seller_id
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity, &item.Price, &item.Status,
			&item.UpdatedAt, &item.ProductName, &item.SellerID,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func (r *pgOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
}

func (r *pgOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT DISTINCT o.id, o.customer_id, o.order_number, o.total_amount, o.status,
				o.payment_method, o.mtn_phone, o.payment_status, o.customer_phone,
				o.shipping_address, o.shipping_city, o.shipping_phone, o.notes,
				o.created_at, o.updated_at
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = $1
		 ORDER BY o.created_at DESC`,
		sellerID)
}

func (r *pgOrderRepo) ListAll(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *pgOrderRepo) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.OrderNumber, &o.TotalAmount, &o.Status,
			&o.PaymentMethod, &o.MTNPhone, &o.PaymentStatus, &o.CustomerPhone,
			&o.ShippingAddress, &o.ShippingCity, &o.ShippingPhone, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) GetItem(ctx context.Context, itemID uuid.UUID) (*model.OrderItem, error) {
	item := &model.OrderItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.status, oi.updated_at,
				p.name, p.seller_id
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.id = $1`, itemID,
	).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
		&item.Status, &item.UpdatedAt, &item.ProductName, &item.SellerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return item, nil
}

func (r *pgOrderRepo) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE order_items SET status = $2, updated_at = NOW() WHERE id = $1`, itemID, status,
	)
	if err != nil {
		return fmt.Errorf("update order item status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
