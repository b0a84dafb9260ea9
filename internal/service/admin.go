package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

const dashboardRecentLimit = 10

type AdminService struct {
	userRepo   repository.UserRepository
	orderRepo  repository.OrderRepository
	reportRepo repository.ReportRepository
	notifier   Notifier
}

func NewAdminService(userRepo repository.UserRepository, orderRepo repository.OrderRepository, reportRepo repository.ReportRepository, notifier Notifier) *AdminService {
	return &AdminService{userRepo: userRepo, orderRepo: orderRepo, reportRepo: reportRepo, notifier: notifier}
}

func (s *AdminService) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, nil
}

// ApproveSeller flips the approval flag and tells the seller they can now
// sign in and sell.
func (s *AdminService) ApproveSeller(ctx context.Context, sellerID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.Role != model.RoleSeller {
		return ErrUserNotFound
	}
	if user.SellerApproved {
		return nil
	}
	if err := s.userRepo.SetSellerApproved(ctx, sellerID, true); err != nil {
		return fmt.Errorf("approve seller: %w", err)
	}
	s.notifier.Notify(ctx, model.NotificationEvent{
		ID:      uuid.New(),
		UserID:  sellerID,
		Type:    model.NotifySellerApproved,
		Title:   "Seller account approved",
		Message: "Your seller account has been approved. You can now log in and list products.",
	})
	return nil
}

func (s *AdminService) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

func (s *AdminService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	overview, err := s.reportRepo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	recentOrders, err := s.orderRepo.ListAll(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	users, err := s.userRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) > dashboardRecentLimit {
		users = users[:dashboardRecentLimit]
	}

	resp := &dto.AdminDashboardResponse{
		TotalUsers:     overview.TotalUsers,
		TotalSellers:   overview.TotalSellers,
		PendingSellers: overview.PendingSellers,
		TotalProducts:  overview.TotalProducts,
		TotalOrders:    overview.TotalOrders,
		RecentOrders:   toOrderResponses(recentOrders),
		RecentUsers:    make([]dto.UserResponse, 0, len(users)),
	}
	for i := range users {
		resp.RecentUsers = append(resp.RecentUsers, toUserResponse(&users[i]))
	}
	return resp, nil
}
