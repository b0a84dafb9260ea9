package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livestockhub/marketplace-api/internal/dto"
	"github.com/livestockhub/marketplace-api/internal/model"
)

func TestCatalogService_CreateRejectsNonRootParent(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	root, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Cattle"})
	require.NoError(t, err)

	child, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Dairy Cattle", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.CreateCategoryRequest{Name: "Jersey", ParentID: &child.ID})
	assert.ErrorIs(t, err, ErrNotRootCategory)
}

func TestCatalogService_ResolveOrCreate(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	created, err := svc.ResolveOrCreate(ctx, "Cattle", nil)
	require.NoError(t, err)

	// Lookup is case-insensitive, so no duplicate appears.
	resolved, err := svc.ResolveOrCreate(ctx, "cattle", nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Len(t, repo.categories, 1)
}

func TestCatalogService_SetActive(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	err := svc.SetActive(ctx, uuid.New(), false)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	root, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Cattle"})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, root.ID, false))

	// A deactivated category disappears from listings and name resolution.
	roots, err := svc.ListRoots(ctx)
	require.NoError(t, err)
	assert.Empty(t, roots)

	resolved, err := svc.ResolveOrCreate(ctx, "Cattle", nil)
	require.NoError(t, err)
	assert.NotEqual(t, root.ID, resolved.ID)

	require.NoError(t, svc.SetActive(ctx, root.ID, true))
	roots, err = svc.ListRoots(ctx)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestCatalogService_Subcategories(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	root := &model.Category{Name: "Poultry", Active: true}
	require.NoError(t, repo.Create(ctx, root))
	child := &model.Category{Name: "Layers", ParentID: &root.ID, Active: true}
	require.NoError(t, repo.Create(ctx, child))

	resp, err := svc.Subcategories(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poultry", resp.CategoryName)
	require.Len(t, resp.Subcategories, 1)
	assert.Equal(t, "Layers", resp.Subcategories[0].Name)
}

func TestCatalogService_SubtreeStopsOnCycle(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	a := &model.Category{Name: "A", Active: true}
	require.NoError(t, repo.Create(ctx, a))
	b := &model.Category{Name: "B", ParentID: &a.ID, Active: true}
	require.NoError(t, repo.Create(ctx, b))
	// Corrupt the chain into a loop.
	a.ParentID = &b.ID

	ids, err := svc.Subtree(ctx, a.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(ids), 2*subtreeDepthLimit+1)
}

func TestCatalogService_AnimalTypes(t *testing.T) {
	svc := NewCatalogService(newMockCategoryRepo())

	resp, err := svc.AnimalTypes("cattle")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Types)

	_, err = svc.AnimalTypes("dragons")
	assert.Error(t, err)
}

func TestCatalogService_SearchEmptyQuery(t *testing.T) {
	svc := NewCatalogService(newMockCategoryRepo())

	resp, err := svc.Search(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}
