package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Report queries are pure aggregation recomputed per request; nothing here
// writes or caches.

type SellerSales struct {
	Revenue   decimal.Decimal
	Orders    int
	ItemsSold int
}

type TopProduct struct {
	ProductID uuid.UUID
	Name      string
	Sold      int
	Revenue   decimal.Decimal
}

type MonthRevenue struct {
	Month   time.Time
	Revenue decimal.Decimal
}

type PlatformOverview struct {
	TotalRevenue     decimal.Decimal
	TotalOrders      int
	TotalUsers       int
	TotalSellers     int
	PendingSellers   int
	TotalProducts    int
	ActiveProducts   int
	LowStockProducts int
}

type CategoryRevenue struct {
	Category string
	Revenue  decimal.Decimal
	Orders   int
}

type SellerRevenue struct {
	SellerID uuid.UUID
	Username string
	Revenue  decimal.Decimal
	Orders   int
}

type ReportRepository interface {
	SellerSales(ctx context.Context, sellerID uuid.UUID, from, to time.Time) (*SellerSales, error)
	SellerTopProducts(ctx context.Context, sellerID uuid.UUID, from, to time.Time, limit int) ([]TopProduct, error)
	SellerRevenueByMonth(ctx context.Context, sellerID uuid.UUID, months int) ([]MonthRevenue, error)
	Overview(ctx context.Context) (*PlatformOverview, error)
	RevenueByCategory(ctx context.Context, limit int) ([]CategoryRevenue, error)
	TopSellers(ctx context.Context, limit int) ([]SellerRevenue, error)
}

type pgReportRepo struct{ pool *pgxpool.Pool }

func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &pgReportRepo{pool: pool}
}

func (r *pgReportRepo) SellerSales(ctx context.Context, sellerID uuid.UUID, from, to time.Time) (*SellerSales, error) {
	s := &SellerSales{}
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(oi.quantity * oi.price), 0),
				COUNT(DISTINCT o.id),
				COALESCE(SUM(oi.quantity), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = $1 AND o.created_at >= $2 AND o.created_at < $3
		   AND o.status <> 'cancelled'`,
		sellerID, from, to,
	).Scan(&s.Revenue, &s.Orders, &s.ItemsSold)
	if err != nil {
		return nil, fmt.Errorf("seller sales: %w", err)
	}
	return s, nil
}

func (r *pgReportRepo) SellerTopProducts(ctx context.Context, sellerID uuid.UUID, from, to time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, SUM(oi.quantity), SUM(oi.quantity * oi.price)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = $1 AND o.created_at >= $2 AND o.created_at < $3
		   AND o.status <> 'cancelled'
		 GROUP BY p.id, p.name
		 ORDER BY SUM(oi.quantity) DESC
		 LIMIT $4`,
		sellerID, from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("seller top products: %w", err)
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Sold, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *pgReportRepo) SellerRevenueByMonth(ctx context.Context, sellerID uuid.UUID, months int) ([]MonthRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('month', o.created_at) AS month,
				COALESCE(SUM(oi.quantity * oi.price), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = $1
		   AND o.created_at >= date_trunc('month', NOW()) - ($2 - 1) * INTERVAL '1 month'
		   AND o.status <> 'cancelled'
		 GROUP BY month
		 ORDER BY month`,
		sellerID, months,
	)
	if err != nil {
		return nil, fmt.Errorf("seller revenue by month: %w", err)
	}
	defer rows.Close()

	var out []MonthRevenue
	for rows.Next() {
		var mr MonthRevenue
		if err := rows.Scan(&mr.Month, &mr.Revenue); err != nil {
			return nil, fmt.Errorf("scan month revenue: %w", err)
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

func (r *pgReportRepo) Overview(ctx context.Context) (*PlatformOverview, error) {
	o := &PlatformOverview{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled'),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = 'seller'),
			(SELECT COUNT(*) FROM users WHERE role = 'seller' AND NOT seller_approved),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM products WHERE stock < $1)`,
		LowStockThreshold,
	).Scan(
		&o.TotalRevenue, &o.TotalOrders, &o.TotalUsers, &o.TotalSellers,
		&o.PendingSellers, &o.TotalProducts, &o.ActiveProducts, &o.LowStockProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("platform overview: %w", err)
	}
	return o, nil
}

func (r *pgReportRepo) RevenueByCategory(ctx context.Context, limit int) ([]CategoryRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.name, COALESCE(SUM(oi.quantity * oi.price), 0), COUNT(DISTINCT oi.order_id)
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN categories c ON c.id = p.category_id
		 GROUP BY c.name
		 ORDER BY SUM(oi.quantity * oi.price) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryRevenue
	for rows.Next() {
		var cr CategoryRevenue
		if err := rows.Scan(&cr.Category, &cr.Revenue, &cr.Orders); err != nil {
			return nil, fmt.Errorf("scan category revenue: %w", err)
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func (r *pgReportRepo) TopSellers(ctx context.Context, limit int) ([]SellerRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, COALESCE(SUM(oi.quantity * oi.price), 0),
				COUNT(DISTINCT oi.order_id)
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN users u ON u.id = p.seller_id
		 GROUP BY u.id, u.username
		 ORDER BY SUM(oi.quantity * oi.price) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer rows.Close()

	var out []SellerRevenue
	for rows.Next() {
		var sr SellerRevenue
		if err := rows.Scan(&sr.SellerID, &sr.Username, &sr.Revenue, &sr.Orders); err != nil {
			return nil, fmt.Errorf("scan seller revenue: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
