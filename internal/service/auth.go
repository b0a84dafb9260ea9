package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSellerPending      = errors.New("seller account awaiting approval")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo  repository.UserRepository
	notifier  Notifier
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, notifier Notifier, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, notifier: notifier, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

// Register creates a customer or seller account. Customers are logged in
// immediately; sellers get an empty profile and wait for admin approval
// before they can sign in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		Phone:    phone,
		Address:  req.Address,
		City:     req.City,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if user.Role == model.RoleSeller {
		profile := &model.SellerProfile{UserID: user.ID, BusinessName: user.Username + "'s Business"}
		if err := s.userRepo.CreateSellerProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("create seller profile: %w", err)
		}
		s.notifyAdmins(ctx, model.NotificationEvent{
			ID:      uuid.New(),
			Type:    model.NotifyNewSeller,
			Title:   "New seller registration",
			Message: fmt.Sprintf("Seller %s is waiting for approval", user.Username),
		})
		return &dto.AuthResponse{User: toUserResponse(user), PendingApproval: true}, nil
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	if user.Role == model.RoleSeller && !user.SellerApproved {
		return nil, ErrSellerPending
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Username != nil && *req.Username != user.Username {
		if existing, err := s.userRepo.GetByUsername(ctx, *req.Username); err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		} else if existing != nil {
			return nil, ErrUserAlreadyExists
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(ctx, *req.Email); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if existing != nil {
			return nil, ErrUserAlreadyExists
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		phone, err := NormalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		user.Phone = phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = *req.City
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) GetSellerProfile(ctx context.Context, userID uuid.UUID) (*dto.SellerProfileResponse, error) {
	profile, err := s.userRepo.GetSellerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get seller profile: %w", err)
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	return &dto.SellerProfileResponse{
		BusinessName:         profile.BusinessName,
		BusinessRegistration: profile.BusinessRegistration,
		Description:          profile.Description,
		Rating:               profile.Rating,
		TotalSales:           profile.TotalSales,
	}, nil
}

func (s *AuthService) UpdateSellerProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateSellerProfileRequest) (*dto.SellerProfileResponse, error) {
	profile, err := s.userRepo.GetSellerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get seller profile: %w", err)
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}

	if req.BusinessName != nil {
		profile.BusinessName = *req.BusinessName
	}
	if req.BusinessRegistration != nil {
		profile.BusinessRegistration = *req.BusinessRegistration
	}
	if req.Description != nil {
		profile.Description = *req.Description
	}
	if err := s.userRepo.UpdateSellerProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("update seller profile: %w", err)
	}
	return s.GetSellerProfile(ctx, userID)
}

func (s *AuthService) notifyAdmins(ctx context.Context, event model.NotificationEvent) {
	admins, err := s.userRepo.List(ctx, model.RoleAdmin)
	if err != nil {
		return
	}
	for _, admin := range admins {
		event.ID = uuid.New()
		event.UserID = admin.ID
		s.notifier.Notify(ctx, event)
	}
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		Phone:          user.Phone,
		Address:        user.Address,
		City:           user.City,
		Country:        user.Country,
		SellerApproved: user.SellerApproved,
		Active:         user.Active,
		CreatedAt:      user.CreatedAt,
	}
}
