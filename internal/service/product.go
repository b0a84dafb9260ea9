package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductAccessDenied = errors.New("not the product owner")
	ErrProductHasOrders    = errors.New("product referenced by orders, deactivate instead")
	ErrInvalidTaxonomy     = errors.New("animal type does not belong to livestock type")
	ErrAmbiguousCategory   = errors.New("provide category_id or new_category_name, not both")
	ErrInvalidFilter       = errors.New("invalid filter value")
	ErrNegativePrice       = errors.New("price must not be negative")
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	catalog     *CatalogService
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, catalog *CatalogService, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, catalog: catalog, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	lt := model.LivestockType(req.LivestockType)
	if !model.ValidAnimalType(lt, req.AnimalType) {
		return nil, ErrInvalidTaxonomy
	}
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID, req.NewCategoryName, req.ParentCategory)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		SellerID:      sellerID,
		CategoryID:    categoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		LivestockType: lt,
		AnimalType:    req.AnimalType,
		Images:        req.Images,
		Active:        true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return &resp, nil
}

// List serves the public catalog; pass sellerID to scope to one seller's
// inventory and includeInactive for seller/admin views.
func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest, sellerID *uuid.UUID) (*dto.ProductListResponse, error) {
	filter := repository.ProductFilter{
		LivestockType: req.LivestockType,
		AnimalType:    req.AnimalType,
		Search:        req.Search,
		Sort:          req.Sort,
		Order:         req.Order,
		Limit:         req.Limit,
		Offset:        (req.Page - 1) * req.Limit,
	}
	if sellerID != nil {
		filter.SellerID = sellerID
	} else {
		filter.ActiveOnly = true
	}

	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: category", ErrInvalidFilter)
		}
		// Filtering by a root category includes its whole branch.
		ids, err := s.catalog.Subtree(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
	}
	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: min_price", ErrInvalidFilter)
		}
		filter.MinPrice = &min
	}
	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: max_price", ErrInvalidFilter)
		}
		filter.MaxPrice = &max
	}
	switch req.Stock {
	case "low":
		filter.LowStock = true
	case "out":
		filter.OutOfStock = true
	}
	if sellerID != nil {
		switch req.Status {
		case "active":
			filter.ActiveOnly = true
		case "inactive":
			filter.InactiveOnly = true
		}
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return &dto.ProductListResponse{Products: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

// Update applies a partial update. Sellers may only touch their own
// products; admins pass isAdmin to bypass the ownership check.
func (s *ProductService) Update(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.getOwned(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.LivestockType != nil {
		product.LivestockType = model.LivestockType(*req.LivestockType)
		// Changing the livestock type invalidates the old animal type,
		// so one must arrive with the other.
		if req.AnimalType == nil {
			return nil, ErrInvalidTaxonomy
		}
	}
	if req.AnimalType != nil {
		product.AnimalType = *req.AnimalType
	}
	if !model.ValidAnimalType(product.LivestockType, product.AnimalType) {
		return nil, ErrInvalidTaxonomy
	}
	if req.CategoryID != nil || req.NewCategoryName != "" {
		categoryID, err := s.resolveCategory(ctx, req.CategoryID, req.NewCategoryName, req.ParentCategory)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if req.Images != nil {
		product.Images = req.Images
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidateCache(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) error {
	if _, err := s.getOwned(ctx, id, actorID, isAdmin); err != nil {
		return err
	}
	referenced, err := s.productRepo.HasOrderItems(ctx, id)
	if err != nil {
		return fmt.Errorf("check order items: %w", err)
	}
	if referenced {
		return ErrProductHasOrders
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) SetActive(ctx context.Context, id, actorID uuid.UUID, isAdmin, active bool) error {
	if _, err := s.getOwned(ctx, id, actorID, isAdmin); err != nil {
		return err
	}
	if err := s.productRepo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) getOwned(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !isAdmin && product.SellerID != actorID {
		return nil, ErrProductAccessDenied
	}
	return product, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, categoryID *uuid.UUID, newName string, parentID *uuid.UUID) (uuid.UUID, error) {
	switch {
	case categoryID != nil && newName != "":
		return uuid.Nil, ErrAmbiguousCategory
	case categoryID != nil:
		category, err := s.catalog.categoryRepo.GetByID(ctx, *categoryID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("get category: %w", err)
		}
		if category == nil || !category.Active {
			return uuid.Nil, ErrCategoryNotFound
		}
		return category.ID, nil
	case newName != "":
		category, err := s.catalog.ResolveOrCreate(ctx, newName, parentID)
		if err != nil {
			return uuid.Nil, err
		}
		return category.ID, nil
	default:
		return uuid.Nil, ErrAmbiguousCategory
	}
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		SellerID:        p.SellerID,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Stock:           p.Stock,
		LivestockType:   p.LivestockType,
		AnimalType:      p.AnimalType,
		AnimalTypeLabel: model.AnimalTypeLabel(p.LivestockType, p.AnimalType),
		Images:          p.Images,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
