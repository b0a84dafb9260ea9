package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/livestockhub/marketplace-api/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	// GetActiveByName does a case-insensitive lookup among active categories.
	GetActiveByName(ctx context.Context, name string) (*model.Category, error)
	ListRoots(ctx context.Context) ([]model.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)
	Search(ctx context.Context, query string, limit int) ([]model.Category, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type pgCategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &pgCategoryRepo{pool: pool}
}

const categoryColumns = `id, name, description, parent_id, active, created_at`

func scanCategory(row pgx.Row) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *pgCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	category.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, name, description, parent_id, active, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW()) RETURNING created_at`,
		category.ID, category.Name, category.Description, category.ParentID,
	).Scan(&category.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	category.Active = true
	return nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) GetActiveByName(ctx context.Context, name string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE LOWER(name) = LOWER($1) AND active`, name))
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) ListRoots(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL AND active ORDER BY name`)
}

func (r *pgCategoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	return r.list(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 AND active ORDER BY name`,
		parentID)
}

func (r *pgCategoryRepo) Search(ctx context.Context, query string, limit int) ([]model.Category, error) {
	return r.list(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE active AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		 ORDER BY name LIMIT $2`,
		query, limit)
}

func (r *pgCategoryRepo) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1 AND active)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subcategories: %w", err)
	}
	return exists, nil
}

func (r *pgCategoryRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE categories SET active=$2 WHERE id=$1`, id, active,
	)
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCategoryRepo) list(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
