package service

import (
	"context"
	"testing"

	"estimate-service/internal/models"
	"estimate-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuote(t *testing.T, repo store.Repository) *models.Quote {
	t.Helper()
	ctx := context.Background()

	quote := &models.Quote{
		QuoteNumber:  "Q-20261015-0001",
		CustomerName: "김민수",
		Status:       models.QuoteStatusSent,
		LaborCost:    15000000,
		MaterialCost: 22000000,
		OtherCost:    1200000,
		Discount:     0,
		VAT:          3800000,
		FinalAmount:  42000000,
	}
	require.NoError(t, repo.CreateQuote(ctx, quote))

	for i, name := range []string{"욕실수전", "도기", "타일"} {
		item := &models.QuoteItem{
			QuoteID:    quote.ID,
			Category:   "욕실",
			ItemName:   name,
			Quantity:   2,
			UnitPrice:  100000,
			TotalPrice: 200000,
			CostType:   models.CostTypeMaterial,
			SortOrder:  i,
			IsIncluded: true,
		}
		require.NoError(t, repo.CreateQuoteItem(ctx, item))
	}
	return quote
}

func TestSnapshotQuoteFirstVersion(t *testing.T) {
	repo := store.NewMemory()
	events := &fakeEvents{}
	svc := NewVersionService(repo, events)
	ctx := context.Background()

	quote := seedQuote(t, repo)

	snap, err := svc.SnapshotQuote(ctx, quote.ID, "수정")
	require.NoError(t, err)
	assert.True(t, snap.ItemsCopied)
	assert.Empty(t, snap.Warning)

	v := snap.Version
	assert.Equal(t, quote.ID, v.QuoteID)
	assert.Equal(t, 1, v.VersionNumber)
	assert.Equal(t, "Q-20261015-0001-v1", v.QuoteNumber)
	assert.Equal(t, int64(42000000), v.FinalAmount)
	assert.Equal(t, int64(15000000), v.LaborCost)
	assert.Equal(t, models.QuoteStatusSent, v.Status)
	assert.Equal(t, "수정", v.SavedReason)
	assert.False(t, v.SavedAt.IsZero())

	require.Len(t, v.Items, 3)
	liveItems, err := repo.GetQuoteItems(ctx, quote.ID)
	require.NoError(t, err)
	for i, item := range v.Items {
		assert.Equal(t, v.ID, item.VersionID)
		assert.Equal(t, liveItems[i].ItemName, item.ItemName)
		assert.NotEqual(t, liveItems[i].ID, item.ID)
	}

	assert.Equal(t, []string{models.EventTypeQuoteVersionSaved}, events.kinds())
}

func TestSnapshotQuoteNumbersIncrease(t *testing.T) {
	repo := store.NewMemory()
	svc := NewVersionService(repo, nil)
	ctx := context.Background()

	quote := seedQuote(t, repo)

	first, err := svc.SnapshotQuote(ctx, quote.ID, "")
	require.NoError(t, err)
	second, err := svc.SnapshotQuote(ctx, quote.ID, "  ")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version.VersionNumber)
	assert.Equal(t, 2, second.Version.VersionNumber)
	assert.Equal(t, DefaultVersionReason, first.Version.SavedReason)
	assert.Equal(t, DefaultVersionReason, second.Version.SavedReason)

	versions, err := svc.ListQuoteVersions(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, 1, versions[1].VersionNumber)
}

func TestSnapshotIsImmutableAfterLiveEdit(t *testing.T) {
	repo := store.NewMemory()
	svc := NewVersionService(repo, nil)
	ctx := context.Background()

	quote := seedQuote(t, repo)
	snap, err := svc.SnapshotQuote(ctx, quote.ID, "")
	require.NoError(t, err)

	require.NoError(t, repo.CreateQuoteItem(ctx, &models.QuoteItem{QuoteID: quote.ID, ItemName: "조명", SortOrder: 9}))

	stored, err := svc.GetQuoteVersion(ctx, snap.Version.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
}

func TestSnapshotQuoteItemCopyFailure(t *testing.T) {
	repo := newFaultyStore()
	repo.failVersionItems = true
	svc := NewVersionService(repo, nil)
	ctx := context.Background()

	quote := seedQuote(t, repo)

	snap, err := svc.SnapshotQuote(ctx, quote.ID, "수정")
	require.NoError(t, err)
	assert.False(t, snap.ItemsCopied)
	assert.NotEmpty(t, snap.Warning)
	assert.Equal(t, 1, snap.Version.VersionNumber)
	assert.Empty(t, snap.Version.Items)

	versions, err := svc.ListQuoteVersions(ctx, quote.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestSnapshotQuoteErrors(t *testing.T) {
	svc := NewVersionService(store.NewMemory(), nil)
	ctx := context.Background()

	_, err := svc.SnapshotQuote(ctx, 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SnapshotQuote(ctx, 77, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetQuoteVersion(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListQuoteVersions(ctx, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSnapshotContract(t *testing.T) {
	repo := store.NewMemory()
	svc := NewVersionService(repo, nil)
	ctx := context.Background()

	contract := &models.Contract{
		ContractNumber: "C-1",
		CustomerName:   "김민수",
		ContractAmount: 42000000,
		Status:         models.ContractStatusSigned,
		PaymentSchedule: models.PaymentSchedule{
			DepositAmount:      4200000,
			FinalPaymentAmount: 37800000,
		},
	}
	require.NoError(t, repo.CreateContract(ctx, contract))

	version, err := svc.SnapshotContract(ctx, contract, "")
	require.NoError(t, err)
	assert.Equal(t, 1, version.VersionNumber)
	assert.Equal(t, ContractSignedReason, version.SavedReason)
	assert.Equal(t, int64(4200000), version.DepositAmount)
	assert.Equal(t, int64(37800000), version.FinalPaymentAmount)

	versions, err := svc.ListContractVersions(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}
