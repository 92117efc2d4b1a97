package service

import (
	"context"
	"testing"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPrice(t *testing.T, repo store.Repository, priceType, category, name string, unitPrice int64) {
	t.Helper()
	require.NoError(t, repo.CreateStandardPrice(context.Background(), &models.StandardPrice{
		PriceType:   priceType,
		Category:    category,
		ProductName: name,
		UnitPrice:   unitPrice,
		IsActive:    true,
	}))
}

func TestCatalogGroupsByPriceType(t *testing.T) {
	repo := store.NewMemory()
	seedPrice(t, repo, models.PriceTypeMaterial, "욕실", "욕실수전", 180000)
	seedPrice(t, repo, models.PriceTypeMaterial, "주방", "싱크볼", 30000)
	seedPrice(t, repo, models.PriceTypeLabor, "욕실", "타일 시공", 45000)

	svc := NewCatalogService(repo, nil, 0)
	catalog, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog.Material, 2)
	assert.Len(t, catalog.Labor, 1)
	assert.NotNil(t, catalog.Composite)
	assert.Empty(t, catalog.Composite)
}

func TestCatalogCache(t *testing.T) {
	repo := store.NewMemory()
	seedPrice(t, repo, models.PriceTypeMaterial, "욕실", "욕실수전", 180000)

	cache := &fakeCache{}
	svc := NewCatalogService(repo, cache, time.Minute)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, cache.data)
	assert.Equal(t, time.Minute, cache.ttl)

	// served from cache, so this entry is not visible yet
	seedPrice(t, repo, models.PriceTypeMaterial, "주방", "싱크볼", 30000)
	catalog, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog.Material, 1)

	require.NoError(t, cache.InvalidateCatalog(ctx))
	catalog, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog.Material, 2)
}

func TestPromotionInvalidatesCatalogCache(t *testing.T) {
	repo := store.NewMemory()
	cache := &fakeCache{}
	catalogSvc := NewCatalogService(repo, cache, time.Minute)
	pricing := NewPricingService(repo, nil, nil, cache)
	ctx := context.Background()

	_, err := catalogSvc.List(ctx)
	require.NoError(t, err)

	id := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(180000)})
	_, err = pricing.Promote(ctx, []int64{id})
	require.NoError(t, err)

	catalog, err := catalogSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, catalog.Material, 1)
	assert.Equal(t, int64(180000), catalog.Material[0].UnitPrice)
}
