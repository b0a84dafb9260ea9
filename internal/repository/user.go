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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	SetSellerApproved(ctx context.Context, id uuid.UUID, approved bool) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, role string) ([]model.User, error)
	CreateSellerProfile(ctx context.Context, profile *model.SellerProfile) error
	GetSellerProfile(ctx context.Context, userID uuid.UUID) (*model.SellerProfile, error)
	UpdateSellerProfile(ctx context.Context, profile *model.SellerProfile) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, role, phone, address, city, country,
	seller_approved, active, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role,
		&user.Phone, &user.Address, &user.City, &user.Country,
		&user.SellerApproved, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	if user.Country == "" {
		user.Country = "Rwanda"
	}
	query := `INSERT INTO users (id, username, email, password_hash, role, phone, address, city, country,
				seller_approved, active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.Password, user.Role,
		user.Phone, user.Address, user.City, user.Country, user.SellerApproved,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.Active = true
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username=$2, email=$3, phone=$4, address=$5, city=$6, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.Phone, user.Address, user.City,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (r *pgUserRepo) SetSellerApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET seller_approved=$2, updated_at=NOW() WHERE id=$1 AND role='seller'`,
		id, approved,
	)
	if err != nil {
		return fmt.Errorf("set seller approved: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET active=$2, updated_at=NOW() WHERE id=$1`, id, active,
	)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgUserRepo) List(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE ($1 = '' OR role = $1) ORDER BY created_at DESC`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Password, &u.Role,
			&u.Phone, &u.Address, &u.City, &u.Country,
			&u.SellerApproved, &u.Active, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *pgUserRepo) CreateSellerProfile(ctx context.Context, profile *model.SellerProfile) error {
	profile.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO seller_profiles (id, user_id, business_name, business_registration, description, rating, total_sales)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.ID, profile.UserID, profile.BusinessName, profile.BusinessRegistration,
		profile.Description, profile.Rating, profile.TotalSales,
	)
	if err != nil {
		return fmt.Errorf("create seller profile: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetSellerProfile(ctx context.Context, userID uuid.UUID) (*model.SellerProfile, error) {
	profile := &model.SellerProfile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, business_name, business_registration, description, rating, total_sales
		 FROM seller_profiles WHERE user_id = $1`, userID,
	).Scan(
		&profile.ID, &profile.UserID, &profile.BusinessName, &profile.BusinessRegistration,
		&profile.Description, &profile.Rating, &profile.TotalSales,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get seller profile: %w", err)
	}
	return profile, nil
}

func (r *pgUserRepo) UpdateSellerProfile(ctx context.Context, profile *model.SellerProfile) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE seller_profiles SET business_name=$2, business_registration=$3, description=$4
		 WHERE user_id=$1`,
		profile.UserID, profile.BusinessName, profile.BusinessRegistration, profile.Description,
	)
	if err != nil {
		return fmt.Errorf("update seller profile: %w", err)
	}
	return nil
}
