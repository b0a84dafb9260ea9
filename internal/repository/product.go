package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/model"
)

// LowStockThreshold marks products a seller should restock.
const LowStockThreshold = 10

// ProductFilter narrows List; zero values mean "no constraint".
type ProductFilter struct {
	SellerID      *uuid.UUID
	CategoryIDs   []uuid.UUID
	LivestockType string
	AnimalType    string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	ActiveOnly    bool
	InactiveOnly  bool
	LowStock      bool
	OutOfStock    bool
	Sort          string
	Order         string
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, seller_id, category_id, name, description, price, stock,
	livestock_type, animal_type, images, active, created_at, updated_at`

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, seller_id, category_id, name, description, price, stock,
				livestock_type, animal_type, images, active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.SellerID, product.CategoryID, product.Name, product.Description,
		product.Price, product.Stock, product.LivestockType, product.AnimalType, product.Images,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	product.Active = true
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.LivestockType, &p.AnimalType, &p.Images, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	where, args := buildProductWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	allowedSorts := map[string]string{
		"name": "name", "price": "price", "stock_quantity": "stock", "created_at": "created_at",
	}
	sort, ok := allowedSorts[f.Sort]
	if !ok {
		sort = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, sort, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.LivestockType, &p.AnimalType, &p.Images, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func buildProductWhere(f ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.SellerID != nil {
		add("seller_id = $%d", *f.SellerID)
	}
	if len(f.CategoryIDs) > 0 {
		add("category_id = ANY($%d)", f.CategoryIDs)
	}
	if f.LivestockType != "" {
		add("livestock_type = $%d", f.LivestockType)
	}
	if f.AnimalType != "" {
		add("animal_type = $%d", f.AnimalType)
	}
	if f.Search != "" {
		add("(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", f.Search)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.ActiveOnly {
		conds = append(conds, "active")
	}
	if f.InactiveOnly {
		conds = append(conds, "NOT active")
	}
	if f.LowStock {
		conds = append(conds, fmt.Sprintf("stock < %d", LowStockThreshold))
	}
	if f.OutOfStock {
		conds = append(conds, "stock = 0")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET category_id=$2, name=$3, description=$4, price=$5, stock=$6,
				livestock_type=$7, animal_type=$8, images=$9, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.CategoryID, product.Name, product.Description, product.Price,
		product.Stock, product.LivestockType, product.AnimalType, product.Images,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET active=$2, updated_at=NOW() WHERE id=$1`, id, active,
	)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product order items: %w", err)
	}
	return exists, nil
}
