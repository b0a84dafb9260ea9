package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNotRootCategory  = errors.New("parent must be a root category")
)

// subtreeDepthLimit bounds descendant collection. The tree is two levels
// deep by construction; the guard keeps a corrupted parent chain from
// looping forever.
const subtreeDepthLimit = 5

type CatalogService struct {
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo}
}

func (s *CatalogService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
		if !parent.IsRoot() {
			return nil, ErrNotRootCategory
		}
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Active:      true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.toCategoryResponse(ctx, category)
}

func (s *CatalogService) ListRoots(ctx context.Context) ([]dto.CategoryResponse, error) {
	roots, err := s.categoryRepo.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	out := make([]dto.CategoryResponse, 0, len(roots))
	for i := range roots {
		resp, err := s.toCategoryResponse(ctx, &roots[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *CatalogService) Subcategories(ctx context.Context, id uuid.UUID) (*dto.SubcategoriesResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	children, err := s.categoryRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	resp := &dto.SubcategoriesResponse{
		CategoryName:  category.Name,
		Subcategories: make([]dto.CategoryResponse, 0, len(children)),
	}
	for i := range children {
		child, err := s.toCategoryResponse(ctx, &children[i])
		if err != nil {
			return nil, err
		}
		resp.Subcategories = append(resp.Subcategories, *child)
	}
	return resp, nil
}

func (s *CatalogService) Search(ctx context.Context, query string, limit int) (*dto.CategorySearchResponse, error) {
	resp := &dto.CategorySearchResponse{Results: []dto.CategoryResponse{}}
	if query == "" {
		return resp, nil
	}
	if limit <= 0 {
		limit = 10
	}
	results, err := s.categoryRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	for i := range results {
		r, err := s.toCategoryResponse(ctx, &results[i])
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, *r)
	}
	return resp, nil
}

// Subtree returns the ids of a category and all its active descendants,
// used to widen product filters to a whole branch.
func (s *CatalogService) Subtree(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}
	for depth := 0; depth < subtreeDepthLimit && len(frontier) > 0; depth++ {
		var next []uuid.UUID
		for _, id := range frontier {
			children, err := s.categoryRepo.ListChildren(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("list children: %w", err)
			}
			for _, child := range children {
				ids = append(ids, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return ids, nil
}

// ResolveOrCreate finds an active category by name, case-insensitively,
// creating it under parentID when absent.
func (s *CatalogService) ResolveOrCreate(ctx context.Context, name string, parentID *uuid.UUID) (*model.Category, error) {
	existing, err := s.categoryRepo.GetActiveByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if parentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
		if !parent.IsRoot() {
			return nil, ErrNotRootCategory
		}
	}

	category := &model.Category{Name: name, ParentID: parentID, Active: true}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// SetActive hides or restores a category. Deactivated categories drop out
// of listings, search and resolve-or-create; their products stay put.
func (s *CatalogService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	if err := s.categoryRepo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return nil
}

func (s *CatalogService) LivestockTypes() dto.LivestockTypesResponse {
	return dto.LivestockTypesResponse{Types: model.LivestockTypes()}
}

func (s *CatalogService) AnimalTypes(livestockType string) (*dto.AnimalTypesResponse, error) {
	lt := model.LivestockType(livestockType)
	if !lt.Valid() {
		return nil, fmt.Errorf("unknown livestock type %q", livestockType)
	}
	return &dto.AnimalTypesResponse{Types: model.AnimalTypesFor(lt)}, nil
}

func (s *CatalogService) toCategoryResponse(ctx context.Context, c *model.Category) (*dto.CategoryResponse, error) {
	hasChildren, err := s.categoryRepo.HasChildren(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check subcategories: %w", err)
	}
	return &dto.CategoryResponse{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		ParentID:         c.ParentID,
		HasSubcategories: hasChildren,
	}, nil
}
