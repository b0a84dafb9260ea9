package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

const (
	defaultReportDays = 30
	topProductsLimit  = 5
	topSellersLimit   = 5
	categoryLimit     = 10
	revenueMonths     = 6
)

type ReportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

func (s *ReportService) SellerReport(ctx context.Context, sellerID uuid.UUID, req dto.ReportRangeRequest) (*dto.SellerReportResponse, error) {
	from, to, err := reportRange(req)
	if err != nil {
		return nil, err
	}

	sales, err := s.reportRepo.SellerSales(ctx, sellerID, from, to)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.reportRepo.SellerTopProducts(ctx, sellerID, from, to, topProductsLimit)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.reportRepo.SellerRevenueByMonth(ctx, sellerID, revenueMonths)
	if err != nil {
		return nil, err
	}

	resp := &dto.SellerReportResponse{
		TotalRevenue:   sales.Revenue,
		TotalOrders:    sales.Orders,
		ProductsSold:   sales.ItemsSold,
		AvgOrderValue:  decimal.Zero,
		TopProducts:    make([]dto.TopProductEntry, 0, len(topProducts)),
		RevenueByMonth: make([]dto.MonthRevenueEntry, 0, len(byMonth)),
	}
	if sales.Orders > 0 {
		resp.AvgOrderValue = sales.Revenue.DivRound(decimal.NewFromInt(int64(sales.Orders)), 2)
	}
	for _, tp := range topProducts {
		resp.TopProducts = append(resp.TopProducts, dto.TopProductEntry{
			ProductID: tp.ProductID, Name: tp.Name, Sold: tp.Sold, Revenue: tp.Revenue,
		})
	}
	for _, mr := range byMonth {
		resp.RevenueByMonth = append(resp.RevenueByMonth, dto.MonthRevenueEntry{
			Month: mr.Month.Format("2006-01"), Revenue: mr.Revenue,
		})
	}
	return resp, nil
}

func (s *ReportService) AdminReport(ctx context.Context) (*dto.AdminReportResponse, error) {
	overview, err := s.reportRepo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.reportRepo.RevenueByCategory(ctx, categoryLimit)
	if err != nil {
		return nil, err
	}
	topSellers, err := s.reportRepo.TopSellers(ctx, topSellersLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.AdminReportResponse{
		TotalRevenue:      overview.TotalRevenue,
		TotalOrders:       overview.TotalOrders,
		TotalUsers:        overview.TotalUsers,
		TotalProducts:     overview.TotalProducts,
		ActiveProducts:    overview.ActiveProducts,
		LowStockProducts:  overview.LowStockProducts,
		PendingSellers:    overview.PendingSellers,
		RevenueByCategory: make([]dto.CategoryRevenueEntry, 0, len(byCategory)),
		TopSellers:        make([]dto.TopSellerEntry, 0, len(topSellers)),
	}
	for _, cr := range byCategory {
		resp.RevenueByCategory = append(resp.RevenueByCategory, dto.CategoryRevenueEntry{
			Category: cr.Category, Revenue: cr.Revenue, Orders: cr.Orders,
		})
	}
	for _, ts := range topSellers {
		resp.TopSellers = append(resp.TopSellers, dto.TopSellerEntry{
			SellerID: ts.SellerID, Username: ts.Username, Revenue: ts.Revenue, Orders: ts.Orders,
		})
	}
	return resp, nil
}

// reportRange parses the optional date window, defaulting to the last 30
// days. The end bound is exclusive, so the end date itself is included by
// pushing the bound to the following midnight.
func reportRange(req dto.ReportRangeRequest) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -defaultReportDays)
	to := now

	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date", ErrInvalidFilter)
		}
		from = parsed
	}
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date", ErrInvalidFilter)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date before start_date", ErrInvalidFilter)
	}
	return from, to, nil
}
