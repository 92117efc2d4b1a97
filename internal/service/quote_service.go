package service

import (
	"context"
	"strings"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService handles quote CRUD
type QuoteService struct {
	store  store.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(repo store.Repository) *QuoteService {
	return &QuoteService{
		store:  repo,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// Create stores a quote and its items. Item totals default to
// quantity × unit price when not given; the quote amounts are stored as sent.
func (s *QuoteService) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	ctx, span := util.StartSpan(ctx, "QuoteService.Create")
	defer span.End()

	quote.CustomerName = strings.TrimSpace(quote.CustomerName)
	if quote.CustomerName == "" {
		return nil, validationError("customer_name is required")
	}
	for i, item := range quote.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, validationError("items[%d].item_name is required", i)
		}
	}

	if quote.QuoteNumber == "" {
		quote.QuoteNumber = documentNumber("Q", s.now())
	}
	if quote.Status == "" {
		quote.Status = models.QuoteStatusDraft
	}

	items := quote.Items
	if err := s.store.CreateQuote(ctx, quote); err != nil {
		return nil, storeError("create quote", err)
	}

	for i := range items {
		item := &items[i]
		item.QuoteID = quote.ID
		if item.CostType == "" {
			item.CostType = models.CostTypeMaterial
		}
		if item.TotalPrice == 0 {
			item.TotalPrice = lineTotal(item.Quantity, item.UnitPrice)
		}
		if err := s.store.CreateQuoteItem(ctx, item); err != nil {
			return nil, storeError("create quote item", err)
		}
	}

	s.logger.Info("Quote created",
		zap.Int64("quote_id", quote.ID),
		zap.Int("items", len(items)))
	return s.Get(ctx, quote.ID)
}

// Get retrieves a quote with its items
func (s *QuoteService) Get(ctx context.Context, quoteID int64) (*models.Quote, error) {
	if quoteID <= 0 {
		return nil, validationError("quote_id is required")
	}

	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, storeError("get quote", err)
	}

	items, err := s.store.GetQuoteItems(ctx, quoteID)
	if err != nil {
		return nil, storeError("get quote items", err)
	}
	quote.Items = items
	return quote, nil
}

// List lists quotes without items, newest first
func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	quotes, err := s.store.ListQuotes(ctx)
	if err != nil {
		return nil, storeError("list quotes", err)
	}
	return quotes, nil
}

func lineTotal(quantity float64, unitPrice int64) int64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromInt(unitPrice)).Round(0).IntPart()
}
