package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultProductGrade is used for new catalog entries when the item has no grade
	DefaultProductGrade = "일반"
	// DefaultUnit is used for new catalog entries when the item has no unit
	DefaultUnit = "개"
	// PromotionSource marks catalog prices derived from verified extraction data
	PromotionSource = "시장가 기반 (추출 데이터 검증)"
)

// Promotion outcome statuses
const (
	OutcomePromoted        = "promoted"
	OutcomeSkippedNotFound = "skipped-not-found"
	OutcomeSkippedNoPrice  = "skipped-no-price"
	OutcomeFailed          = "failed"
)

// PromotionOutcome describes what happened to one extracted item
type PromotionOutcome struct {
	ItemID          int64  `json:"id"`
	Status          string `json:"status"`
	StandardPriceID int64  `json:"standard_price_id,omitempty"`
	UnitPrice       int64  `json:"unit_price,omitempty"`
	Created         bool   `json:"created,omitempty"`
	Error           string `json:"error,omitempty"`
}

// PromotionResult is the outcome of a promotion batch
type PromotionResult struct {
	Updated  int                `json:"updated"`
	Outcomes []PromotionOutcome `json:"outcomes"`
}

// VerificationResult is the outcome of a verification toggle
type VerificationResult struct {
	ItemID          int64             `json:"id"`
	Verified        bool              `json:"verified"`
	AddedToStandard bool              `json:"addedToStandard"`
	Outcome         *PromotionOutcome `json:"outcome,omitempty"`
}

// PricingService promotes extracted line items into the standard price catalog
type PricingService struct {
	store  store.Repository
	locker KeyLocker
	events EventPublisher
	cache  CatalogCache
	logger *zap.Logger
	now    func() time.Time
}

// NewPricingService creates a new pricing service.
// A nil locker falls back to an in-process per-key lock; events and cache may be nil.
func NewPricingService(repo store.Repository, locker KeyLocker, events EventPublisher, cache CatalogCache) *PricingService {
	if locker == nil {
		locker = NewLocalKeyLocker()
	}
	if events == nil {
		events = noopEvents{}
	}
	return &PricingService{
		store:  repo,
		locker: locker,
		events: events,
		cache:  cache,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// ResolveUnitPrice derives the unit price of an extracted item. An explicit
// unit price wins; otherwise total/quantity rounded half-up to whole won.
// ok is false when neither is available or quantity is zero.
func ResolveUnitPrice(item *models.ExtractedItem) (price int64, ok bool) {
	if item.UnitPrice != nil && *item.UnitPrice != 0 {
		return *item.UnitPrice, true
	}
	if item.TotalPrice == nil || item.Quantity == nil || *item.Quantity == 0 {
		return 0, false
	}

	total := decimal.NewFromInt(*item.TotalPrice)
	qty := decimal.NewFromFloat(*item.Quantity)
	return total.Div(qty).Round(0).IntPart(), true
}

// Promote promotes each item into the catalog, in input order.
// Per-item problems never abort the batch; they show up in Outcomes.
func (s *PricingService) Promote(ctx context.Context, itemIDs []int64) (*PromotionResult, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.Promote")
	defer span.End()

	if len(itemIDs) == 0 {
		return nil, validationError("itemIds must not be empty")
	}

	start := time.Now()
	defer func() {
		util.PromotionLatency.Observe(time.Since(start).Seconds())
	}()

	result := &PromotionResult{Outcomes: make([]PromotionOutcome, 0, len(itemIDs))}
	for _, id := range itemIDs {
		outcome := s.promoteByID(ctx, id)
		if outcome.Status == OutcomePromoted {
			result.Updated++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Updated > 0 {
		s.invalidateCatalog(ctx)
	}

	s.logger.Info("Promotion batch finished",
		zap.Int("requested", len(itemIDs)),
		zap.Int("updated", result.Updated))
	return result, nil
}

// SetVerified persists the verified flag and, when it becomes true,
// promotes the item. Promotion problems only clear AddedToStandard.
// Un-verifying never touches the catalog.
func (s *PricingService) SetVerified(ctx context.Context, itemID int64, verified bool) (*VerificationResult, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.SetVerified")
	defer span.End()

	if itemID <= 0 {
		return nil, validationError("id is required")
	}

	if err := s.store.SetExtractedItemVerified(ctx, itemID, verified); err != nil {
		return nil, storeError("set verified", err)
	}
	util.ItemsVerifiedTotal.WithLabelValues(fmt.Sprintf("%t", verified)).Inc()

	result := &VerificationResult{ItemID: itemID, Verified: verified}
	if !verified {
		return result, nil
	}

	outcome := s.promoteByID(ctx, itemID)
	result.Outcome = &outcome
	result.AddedToStandard = outcome.Status == OutcomePromoted

	if result.AddedToStandard {
		s.invalidateCatalog(ctx)
	} else {
		s.logger.Warn("Verified item was not added to the catalog",
			zap.Int64("item_id", itemID),
			zap.String("outcome", outcome.Status),
			zap.String("error", outcome.Error))
	}
	return result, nil
}

func (s *PricingService) promoteByID(ctx context.Context, itemID int64) PromotionOutcome {
	item, err := s.store.GetExtractedItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.outcome(PromotionOutcome{ItemID: itemID, Status: OutcomeSkippedNotFound})
		}
		s.logger.Error("Failed to load extracted item", zap.Int64("item_id", itemID), zap.Error(err))
		return s.outcome(PromotionOutcome{ItemID: itemID, Status: OutcomeFailed, Error: err.Error()})
	}
	return s.outcome(s.promoteItem(ctx, item))
}

func (s *PricingService) outcome(o PromotionOutcome) PromotionOutcome {
	util.PromotionOutcomesTotal.WithLabelValues(o.Status).Inc()
	return o
}

// promoteItem upserts the catalog entry for one item under the catalog key lock
func (s *PricingService) promoteItem(ctx context.Context, item *models.ExtractedItem) PromotionOutcome {
	unitPrice, ok := ResolveUnitPrice(item)
	if !ok {
		return PromotionOutcome{ItemID: item.ID, Status: OutcomeSkippedNoPrice}
	}

	failed := func(err error) PromotionOutcome {
		s.logger.Error("Failed to promote extracted item",
			zap.Int64("item_id", item.ID),
			zap.String("category", item.Category),
			zap.String("canonical_name", item.CanonicalName),
			zap.Error(err))
		return PromotionOutcome{ItemID: item.ID, Status: OutcomeFailed, Error: err.Error()}
	}

	unlock, err := s.locker.Lock(ctx, catalogKey(item.Category, item.CanonicalName))
	if err != nil {
		return failed(err)
	}
	defer unlock()

	existing, err := s.store.FindStandardPrice(ctx, item.Category, item.CanonicalName)
	if err != nil {
		return failed(err)
	}

	if existing != nil {
		return s.updateExisting(ctx, existing, item, unitPrice, failed)
	}

	price := s.newStandardPrice(item, unitPrice)
	if err := s.store.CreateStandardPrice(ctx, price); err != nil {
		// another instance may have inserted the same key first
		raced, ferr := s.store.FindStandardPrice(ctx, item.Category, item.CanonicalName)
		if ferr != nil || raced == nil {
			return failed(err)
		}
		return s.updateExisting(ctx, raced, item, unitPrice, failed)
	}

	s.publishPriceUpdated(ctx, price, item.ID, true)
	return PromotionOutcome{
		ItemID:          item.ID,
		Status:          OutcomePromoted,
		StandardPriceID: price.ID,
		UnitPrice:       unitPrice,
		Created:         true,
	}
}

func (s *PricingService) updateExisting(
	ctx context.Context,
	price *models.StandardPrice,
	item *models.ExtractedItem,
	unitPrice int64,
	failed func(error) PromotionOutcome,
) PromotionOutcome {
	price.UnitPrice = unitPrice
	price.IsVerified = true
	price.PriceDate = s.today()
	price.Source = PromotionSource
	if item.Brand != "" {
		price.Brand = item.Brand
	}
	if item.ProductGrade != "" {
		price.ProductGrade = item.ProductGrade
	}
	if item.Unit != "" {
		price.Unit = item.Unit
	}

	if err := s.store.UpdateStandardPrice(ctx, price); err != nil {
		return failed(err)
	}

	s.publishPriceUpdated(ctx, price, item.ID, false)
	return PromotionOutcome{
		ItemID:          item.ID,
		Status:          OutcomePromoted,
		StandardPriceID: price.ID,
		UnitPrice:       unitPrice,
	}
}

func (s *PricingService) newStandardPrice(item *models.ExtractedItem, unitPrice int64) *models.StandardPrice {
	return &models.StandardPrice{
		PriceType:      models.PriceTypeMaterial,
		Category:       item.Category,
		SubCategory:    item.SubCategory,
		DetailCategory: item.DetailCategory,
		ProductName:    item.CanonicalName,
		Brand:          item.Brand,
		ProductGrade:   orDefault(item.ProductGrade, DefaultProductGrade),
		Unit:           orDefault(item.Unit, DefaultUnit),
		UnitPrice:      unitPrice,
		Source:         PromotionSource,
		IsVerified:     true,
		IsActive:       true,
		PriceDate:      s.today(),
	}
}

func (s *PricingService) publishPriceUpdated(ctx context.Context, price *models.StandardPrice, itemID int64, created bool) {
	if err := s.events.PublishCatalogPriceUpdated(ctx, price, itemID, created); err != nil {
		s.logger.Error("Failed to publish CatalogPriceUpdated event", zap.Error(err))
	}
}

func (s *PricingService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *PricingService) today() time.Time {
	now := s.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// CreateExtractedItem stores a manually entered or ingested line item
func (s *PricingService) CreateExtractedItem(ctx context.Context, item *models.ExtractedItem) error {
	if err := validateExtractedItem(item); err != nil {
		return err
	}
	item.IsVerified = false
	if err := s.store.CreateExtractedItem(ctx, item); err != nil {
		return storeError("create extracted item", err)
	}
	return nil
}

// UpdateExtractedItem applies a manual edit. The verified flag is left alone;
// use SetVerified to change it.
func (s *PricingService) UpdateExtractedItem(ctx context.Context, item *models.ExtractedItem) (*models.ExtractedItem, error) {
	if item.ID <= 0 {
		return nil, validationError("id is required")
	}
	if err := validateExtractedItem(item); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExtractedItem(ctx, item); err != nil {
		return nil, storeError("update extracted item", err)
	}

	updated, err := s.store.GetExtractedItem(ctx, item.ID)
	if err != nil {
		return nil, storeError("get extracted item", err)
	}
	return updated, nil
}

// ListExtractedItems lists extracted items, optionally by verification state
func (s *PricingService) ListExtractedItems(ctx context.Context, verified *bool) ([]models.ExtractedItem, error) {
	items, err := s.store.ListExtractedItems(ctx, verified)
	if err != nil {
		return nil, storeError("list extracted items", err)
	}
	return items, nil
}

func validateExtractedItem(item *models.ExtractedItem) error {
	item.Category = strings.TrimSpace(item.Category)
	item.CanonicalName = strings.TrimSpace(item.CanonicalName)
	if item.Category == "" {
		return validationError("category is required")
	}
	if item.CanonicalName == "" {
		return validationError("canonical_name is required")
	}
	return nil
}

func catalogKey(category, productName string) string {
	return fmt.Sprintf("standard-price:%s:%s", category, productName)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
