package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPricing(repo store.Repository) (*PricingService, *fakeEvents, *fakeCache) {
	events := &fakeEvents{}
	cache := &fakeCache{}
	svc := NewPricingService(repo, nil, events, cache)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC) }
	return svc, events, cache
}

func addItem(t *testing.T, repo store.Repository, item models.ExtractedItem) int64 {
	t.Helper()
	require.NoError(t, repo.CreateExtractedItem(context.Background(), &item))
	return item.ID
}

func TestResolveUnitPrice(t *testing.T) {
	tests := []struct {
		name  string
		item  models.ExtractedItem
		want  int64
		wants bool
	}{
		{
			name:  "explicit unit price wins",
			item:  models.ExtractedItem{UnitPrice: int64Ptr(12000), TotalPrice: int64Ptr(99999), Quantity: float64Ptr(3)},
			want:  12000,
			wants: true,
		},
		{
			name:  "derived from total and quantity",
			item:  models.ExtractedItem{TotalPrice: int64Ptr(360000), Quantity: float64Ptr(2)},
			want:  180000,
			wants: true,
		},
		{
			name:  "rounds half up",
			item:  models.ExtractedItem{TotalPrice: int64Ptr(10), Quantity: float64Ptr(4)},
			want:  3,
			wants: true,
		},
		{
			name:  "fractional quantity",
			item:  models.ExtractedItem{TotalPrice: int64Ptr(100000), Quantity: float64Ptr(3)},
			want:  33333,
			wants: true,
		},
		{
			name:  "zero unit price falls back to total",
			item:  models.ExtractedItem{UnitPrice: int64Ptr(0), TotalPrice: int64Ptr(5000), Quantity: float64Ptr(2)},
			want:  2500,
			wants: true,
		},
		{
			name: "zero quantity",
			item: models.ExtractedItem{TotalPrice: int64Ptr(5000), Quantity: float64Ptr(0)},
		},
		{
			name: "missing quantity",
			item: models.ExtractedItem{TotalPrice: int64Ptr(5000)},
		},
		{
			name: "nothing to go on",
			item: models.ExtractedItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveUnitPrice(&tt.item)
			assert.Equal(t, tt.wants, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromoteDerivesUnitPrice(t *testing.T) {
	repo := store.NewMemory()
	svc, events, cache := newTestPricing(repo)
	ctx := context.Background()

	id := addItem(t, repo, models.ExtractedItem{
		Category:      "욕실",
		CanonicalName: "욕실수전",
		TotalPrice:    int64Ptr(360000),
		Quantity:      float64Ptr(2),
	})

	result, err := svc.Promote(ctx, []int64{id})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, OutcomePromoted, result.Outcomes[0].Status)
	assert.True(t, result.Outcomes[0].Created)

	price, err := repo.FindStandardPrice(ctx, "욕실", "욕실수전")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, int64(180000), price.UnitPrice)
	assert.True(t, price.IsVerified)
	assert.True(t, price.IsActive)
	assert.Equal(t, models.PriceTypeMaterial, price.PriceType)
	assert.Equal(t, DefaultProductGrade, price.ProductGrade)
	assert.Equal(t, DefaultUnit, price.Unit)
	assert.Equal(t, PromotionSource, price.Source)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), price.PriceDate)

	assert.Equal(t, []string{models.EventTypeCatalogPriceUpdated}, events.kinds())
	assert.Equal(t, 1, cache.invalidated)
}

func TestPromoteSkipsUnpricedItems(t *testing.T) {
	repo := store.NewMemory()
	svc, _, cache := newTestPricing(repo)
	ctx := context.Background()

	zeroQty := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "도기", TotalPrice: int64Ptr(5000), Quantity: float64Ptr(0)})
	noQty := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "타일", TotalPrice: int64Ptr(5000)})
	priced := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(150000)})

	result, err := svc.Promote(ctx, []int64{zeroQty, noQty, 9999, priced})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	statuses := make([]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		statuses = append(statuses, o.Status)
	}
	assert.Equal(t, []string{OutcomeSkippedNoPrice, OutcomeSkippedNoPrice, OutcomeSkippedNotFound, OutcomePromoted}, statuses)
	assert.Equal(t, int64(9999), result.Outcomes[2].ItemID)

	for _, name := range []string{"도기", "타일"} {
		price, err := repo.FindStandardPrice(ctx, "욕실", name)
		require.NoError(t, err)
		assert.Nil(t, price)
	}
	assert.Equal(t, 1, cache.invalidated)
}

func TestPromoteRequiresIDs(t *testing.T) {
	svc, _, _ := newTestPricing(store.NewMemory())

	_, err := svc.Promote(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPromoteSameKeyKeepsOneEntry(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	first := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(150000)})
	second := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(170000)})

	result, err := svc.Promote(ctx, []int64{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.True(t, result.Outcomes[0].Created)
	assert.False(t, result.Outcomes[1].Created)
	assert.Equal(t, result.Outcomes[0].StandardPriceID, result.Outcomes[1].StandardPriceID)

	prices, err := repo.ListStandardPrices(ctx, models.PriceTypeMaterial)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, int64(170000), prices[0].UnitPrice)
}

func TestPromotePreservesExistingAttributes(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	seeded := addItem(t, repo, models.ExtractedItem{
		Category:      "욕실",
		CanonicalName: "욕실수전",
		Brand:         "대림",
		ProductGrade:  "고급",
		Unit:          "EA",
		UnitPrice:     int64Ptr(150000),
	})
	_, err := svc.Promote(ctx, []int64{seeded})
	require.NoError(t, err)

	bare := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(160000)})
	_, err = svc.Promote(ctx, []int64{bare})
	require.NoError(t, err)

	price, err := repo.FindStandardPrice(ctx, "욕실", "욕실수전")
	require.NoError(t, err)
	assert.Equal(t, int64(160000), price.UnitPrice)
	assert.Equal(t, "대림", price.Brand)
	assert.Equal(t, "고급", price.ProductGrade)
	assert.Equal(t, "EA", price.Unit)

	branded := addItem(t, repo, models.ExtractedItem{
		Category:      "욕실",
		CanonicalName: "욕실수전",
		Brand:         "아메리칸스탠다드",
		ProductGrade:  "일반",
		Unit:          "개",
		UnitPrice:     int64Ptr(175000),
	})
	_, err = svc.Promote(ctx, []int64{branded})
	require.NoError(t, err)

	price, err = repo.FindStandardPrice(ctx, "욕실", "욕실수전")
	require.NoError(t, err)
	assert.Equal(t, "아메리칸스탠다드", price.Brand)
	assert.Equal(t, "일반", price.ProductGrade)
	assert.Equal(t, "개", price.Unit)
}

func TestPromoteReportsStoreFailurePerItem(t *testing.T) {
	repo := newFaultyStore()
	repo.failFind = true
	svc, _, cache := newTestPricing(repo)

	id := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(150000)})

	result, err := svc.Promote(context.Background(), []int64{id})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, OutcomeFailed, result.Outcomes[0].Status)
	assert.NotEmpty(t, result.Outcomes[0].Error)
	assert.Zero(t, cache.invalidated)
}

func TestPromoteFallsBackToUpdateWhenInsertLosesRace(t *testing.T) {
	repo := newFaultyStore()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	// another writer creates the entry between lookup and insert
	repo.createPriceBefore = func(price *models.StandardPrice) {
		repo.createPriceBefore = nil
		rival := *price
		rival.UnitPrice = 1
		require.NoError(t, repo.Memory.CreateStandardPrice(ctx, &rival))
	}

	id := addItem(t, repo, models.ExtractedItem{Category: "욕실", CanonicalName: "욕실수전", UnitPrice: int64Ptr(150000)})

	result, err := svc.Promote(ctx, []int64{id})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.False(t, result.Outcomes[0].Created)

	prices, err := repo.ListStandardPrices(ctx, models.PriceTypeMaterial)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, int64(150000), prices[0].UnitPrice)
}

func TestConcurrentPromotionsOfOneKey(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	const n = 10
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = addItem(t, repo, models.ExtractedItem{
			Category:      "욕실",
			CanonicalName: "욕실수전",
			UnitPrice:     int64Ptr(int64(100000 + i)),
		})
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			result, err := svc.Promote(ctx, []int64{id})
			assert.NoError(t, err)
			assert.Equal(t, 1, result.Updated)
		}(id)
	}
	wg.Wait()

	prices, err := repo.ListStandardPrices(ctx, models.PriceTypeMaterial)
	require.NoError(t, err)
	assert.Len(t, prices, 1)
}

func TestSetVerifiedPromotes(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	id := addItem(t, repo, models.ExtractedItem{Category: "주방", CanonicalName: "싱크볼", TotalPrice: int64Ptr(90000), Quantity: float64Ptr(3)})

	result, err := svc.SetVerified(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.True(t, result.AddedToStandard)

	item, err := repo.GetExtractedItem(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.IsVerified)

	price, err := repo.FindStandardPrice(ctx, "주방", "싱크볼")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, int64(30000), price.UnitPrice)
}

func TestSetVerifiedWithoutPrice(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	id := addItem(t, repo, models.ExtractedItem{Category: "주방", CanonicalName: "싱크볼"})

	result, err := svc.SetVerified(ctx, id, true)
	require.NoError(t, err)
	assert.False(t, result.AddedToStandard)
	require.NotNil(t, result.Outcome)
	assert.Equal(t, OutcomeSkippedNoPrice, result.Outcome.Status)

	item, err := repo.GetExtractedItem(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.IsVerified)
}

func TestSetVerifiedSurvivesCatalogFailure(t *testing.T) {
	repo := newFaultyStore()
	repo.failFind = true
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	id := addItem(t, repo, models.ExtractedItem{Category: "주방", CanonicalName: "싱크볼", UnitPrice: int64Ptr(30000)})

	result, err := svc.SetVerified(ctx, id, true)
	require.NoError(t, err)
	assert.False(t, result.AddedToStandard)

	item, err := repo.GetExtractedItem(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.IsVerified)
}

func TestUnverifyKeepsCatalogEntry(t *testing.T) {
	repo := store.NewMemory()
	svc, _, cache := newTestPricing(repo)
	ctx := context.Background()

	id := addItem(t, repo, models.ExtractedItem{Category: "주방", CanonicalName: "싱크볼", UnitPrice: int64Ptr(30000)})

	_, err := svc.SetVerified(ctx, id, true)
	require.NoError(t, err)
	invalidations := cache.invalidated

	result, err := svc.SetVerified(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.False(t, result.AddedToStandard)
	assert.Nil(t, result.Outcome)
	assert.Equal(t, invalidations, cache.invalidated)

	price, err := repo.FindStandardPrice(ctx, "주방", "싱크볼")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, int64(30000), price.UnitPrice)
	assert.True(t, price.IsVerified)
}

func TestSetVerifiedUnknownItem(t *testing.T) {
	svc, _, _ := newTestPricing(store.NewMemory())

	_, err := svc.SetVerified(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetVerified(context.Background(), 0, true)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExtractedItemEdits(t *testing.T) {
	repo := store.NewMemory()
	svc, _, _ := newTestPricing(repo)
	ctx := context.Background()

	item := &models.ExtractedItem{Category: " 욕실 ", CanonicalName: "욕실수전", IsVerified: true}
	require.NoError(t, svc.CreateExtractedItem(ctx, item))
	assert.Equal(t, "욕실", item.Category)
	assert.False(t, item.IsVerified)

	_, err := svc.SetVerified(ctx, item.ID, true)
	require.NoError(t, err)

	edit := *item
	edit.UnitPrice = int64Ptr(140000)
	edit.IsVerified = false
	updated, err := svc.UpdateExtractedItem(ctx, &edit)
	require.NoError(t, err)
	assert.Equal(t, int64(140000), *updated.UnitPrice)
	assert.True(t, updated.IsVerified)

	verified := true
	items, err := svc.ListExtractedItems(ctx, &verified)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, svc.CreateExtractedItem(ctx, &models.ExtractedItem{Category: "욕실"}), ErrValidation)
}
