package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"estimate-service/internal/models"
)

// Memory is a process-lifetime Repository used when no database is configured
// (demo / offline mode). Data is lost on restart.
type Memory struct {
	mu  sync.RWMutex
	seq int64

	estimates        map[int64]models.EstimateRequest
	extracted        map[int64]models.ExtractedItem
	prices           map[int64]models.StandardPrice
	quotes           map[int64]models.Quote
	quoteItems       map[int64][]models.QuoteItem
	quoteVersions    map[int64]models.QuoteVersion
	versionItems     map[int64][]models.QuoteVersionItem
	contracts        map[int64]models.Contract
	contractVersions map[int64][]models.ContractVersion
}

func NewMemory() *Memory {
	return &Memory{
		estimates:        make(map[int64]models.EstimateRequest),
		extracted:        make(map[int64]models.ExtractedItem),
		prices:           make(map[int64]models.StandardPrice),
		quotes:           make(map[int64]models.Quote),
		quoteItems:       make(map[int64][]models.QuoteItem),
		quoteVersions:    make(map[int64]models.QuoteVersion),
		versionItems:     make(map[int64][]models.QuoteVersionItem),
		contracts:        make(map[int64]models.Contract),
		contractVersions: make(map[int64][]models.ContractVersion),
	}
}

// nextID must be called with mu held
func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }

func (m *Memory) CreateEstimateRequest(_ context.Context, req *models.EstimateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	req.ID = m.nextID()
	req.CreatedAt, req.UpdatedAt = now, now
	m.estimates[req.ID] = *req
	return nil
}

func (m *Memory) GetEstimateRequest(_ context.Context, id int64) (*models.EstimateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.estimates[id]
	if !ok {
		return nil, fmt.Errorf("estimate request %d: %w", id, ErrNotFound)
	}
	return &req, nil
}

func (m *Memory) ListEstimateRequests(context.Context) ([]models.EstimateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reqs := make([]models.EstimateRequest, 0, len(m.estimates))
	for _, req := range m.estimates {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID > reqs[j].ID })
	return reqs, nil
}

func (m *Memory) UpdateEstimateRequestStatus(_ context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.estimates[id]
	if !ok {
		return fmt.Errorf("estimate request %d: %w", id, ErrNotFound)
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	m.estimates[id] = req
	return nil
}

func (m *Memory) CreateExtractedItem(_ context.Context, item *models.ExtractedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	item.ID = m.nextID()
	item.CreatedAt, item.UpdatedAt = now, now
	m.extracted[item.ID] = *item
	return nil
}

func (m *Memory) GetExtractedItem(_ context.Context, id int64) (*models.ExtractedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.extracted[id]
	if !ok {
		return nil, fmt.Errorf("extracted item %d: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (m *Memory) ListExtractedItems(_ context.Context, verified *bool) ([]models.ExtractedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]models.ExtractedItem, 0, len(m.extracted))
	for _, item := range m.extracted {
		if verified != nil && item.IsVerified != *verified {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) UpdateExtractedItem(_ context.Context, item *models.ExtractedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.extracted[item.ID]
	if !ok {
		return fmt.Errorf("extracted item %d: %w", item.ID, ErrNotFound)
	}
	item.IsVerified = existing.IsVerified
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	m.extracted[item.ID] = *item
	return nil
}

func (m *Memory) SetExtractedItemVerified(_ context.Context, id int64, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.extracted[id]
	if !ok {
		return fmt.Errorf("extracted item %d: %w", id, ErrNotFound)
	}
	item.IsVerified = verified
	item.UpdatedAt = time.Now()
	m.extracted[id] = item
	return nil
}

func (m *Memory) FindStandardPrice(_ context.Context, category, productName string) (*models.StandardPrice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, price := range m.prices {
		if price.Category == category && price.ProductName == productName {
			p := price
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateStandardPrice(_ context.Context, price *models.StandardPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.prices {
		if existing.Category == price.Category && existing.ProductName == price.ProductName {
			return fmt.Errorf("standard price %s/%s already exists", price.Category, price.ProductName)
		}
	}

	now := time.Now()
	price.ID = m.nextID()
	price.CreatedAt, price.UpdatedAt = now, now
	m.prices[price.ID] = *price
	return nil
}

func (m *Memory) UpdateStandardPrice(_ context.Context, price *models.StandardPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.prices[price.ID]
	if !ok {
		return fmt.Errorf("standard price %d: %w", price.ID, ErrNotFound)
	}
	existing.Brand = price.Brand
	existing.ProductGrade = price.ProductGrade
	existing.Unit = price.Unit
	existing.UnitPrice = price.UnitPrice
	existing.Source = price.Source
	existing.IsVerified = price.IsVerified
	existing.PriceDate = price.PriceDate
	existing.UpdatedAt = time.Now()
	m.prices[price.ID] = existing
	return nil
}

func (m *Memory) ListStandardPrices(_ context.Context, priceType string) ([]models.StandardPrice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prices := make([]models.StandardPrice, 0)
	for _, price := range m.prices {
		if price.PriceType == priceType && price.IsActive {
			prices = append(prices, price)
		}
	}
	sort.Slice(prices, func(i, j int) bool {
		if prices[i].Category != prices[j].Category {
			return prices[i].Category < prices[j].Category
		}
		return prices[i].ProductName < prices[j].ProductName
	})
	return prices, nil
}

func (m *Memory) CreateQuote(_ context.Context, quote *models.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	quote.ID = m.nextID()
	quote.CreatedAt, quote.UpdatedAt = now, now
	stored := *quote
	stored.Items = nil
	m.quotes[quote.ID] = stored
	return nil
}

func (m *Memory) GetQuote(_ context.Context, id int64) (*models.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quote, ok := m.quotes[id]
	if !ok {
		return nil, fmt.Errorf("quote %d: %w", id, ErrNotFound)
	}
	return &quote, nil
}

func (m *Memory) ListQuotes(context.Context) ([]models.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quotes := make([]models.Quote, 0, len(m.quotes))
	for _, quote := range m.quotes {
		quotes = append(quotes, quote)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID > quotes[j].ID })
	return quotes, nil
}

func (m *Memory) CreateQuoteItem(_ context.Context, item *models.QuoteItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.quotes[item.QuoteID]; !ok {
		return fmt.Errorf("quote %d: %w", item.QuoteID, ErrNotFound)
	}
	item.ID = m.nextID()
	m.quoteItems[item.QuoteID] = append(m.quoteItems[item.QuoteID], *item)
	return nil
}

func (m *Memory) GetQuoteItems(_ context.Context, quoteID int64) ([]models.QuoteItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := append([]models.QuoteItem(nil), m.quoteItems[quoteID]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	return items, nil
}

func (m *Memory) NextQuoteVersionNumber(_ context.Context, quoteID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	quote, ok := m.quotes[quoteID]
	if !ok {
		return 0, fmt.Errorf("quote %d: %w", quoteID, ErrNotFound)
	}

	last := quote.LastVersionNumber
	for _, v := range m.quoteVersions {
		if v.QuoteID == quoteID && v.VersionNumber > last {
			last = v.VersionNumber
		}
	}
	quote.LastVersionNumber = last + 1
	m.quotes[quoteID] = quote
	return quote.LastVersionNumber, nil
}

func (m *Memory) CreateQuoteVersion(_ context.Context, version *models.QuoteVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.quoteVersions {
		if v.QuoteID == version.QuoteID && v.VersionNumber == version.VersionNumber {
			return fmt.Errorf("quote %d already has version %d", version.QuoteID, version.VersionNumber)
		}
	}

	version.ID = m.nextID()
	version.SavedAt = time.Now()
	stored := *version
	stored.Items = nil
	m.quoteVersions[version.ID] = stored
	return nil
}

func (m *Memory) CreateQuoteVersionItems(_ context.Context, items []models.QuoteVersionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if _, ok := m.quoteVersions[item.VersionID]; !ok {
			return fmt.Errorf("quote version %d: %w", item.VersionID, ErrNotFound)
		}
	}
	for _, item := range items {
		item.ID = m.nextID()
		m.versionItems[item.VersionID] = append(m.versionItems[item.VersionID], item)
	}
	return nil
}

func (m *Memory) GetQuoteVersion(_ context.Context, id int64) (*models.QuoteVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	version, ok := m.quoteVersions[id]
	if !ok {
		return nil, fmt.Errorf("quote version %d: %w", id, ErrNotFound)
	}
	return &version, nil
}

func (m *Memory) GetQuoteVersionItems(_ context.Context, versionID int64) ([]models.QuoteVersionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := append([]models.QuoteVersionItem(nil), m.versionItems[versionID]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	return items, nil
}

func (m *Memory) ListQuoteVersions(_ context.Context, quoteID int64) ([]models.QuoteVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := make([]models.QuoteVersion, 0)
	for _, v := range m.quoteVersions {
		if v.QuoteID == quoteID {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber > versions[j].VersionNumber })
	return versions, nil
}

func (m *Memory) CreateContract(_ context.Context, contract *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	contract.ID = m.nextID()
	contract.CreatedAt, contract.UpdatedAt = now, now
	m.contracts[contract.ID] = *contract
	return nil
}

func (m *Memory) GetContract(_ context.Context, id int64) (*models.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contract, ok := m.contracts[id]
	if !ok {
		return nil, fmt.Errorf("contract %d: %w", id, ErrNotFound)
	}
	return &contract, nil
}

func (m *Memory) ListContracts(context.Context) ([]models.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contracts := make([]models.Contract, 0, len(m.contracts))
	for _, contract := range m.contracts {
		contracts = append(contracts, contract)
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID > contracts[j].ID })
	return contracts, nil
}

func (m *Memory) SignContract(_ context.Context, id int64, signatureURL string, signedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contract, ok := m.contracts[id]
	if !ok || contract.Status != models.ContractStatusPending {
		return false, nil
	}
	contract.Status = models.ContractStatusSigned
	contract.SignatureURL = signatureURL
	contract.SignedAt = &signedAt
	contract.UpdatedAt = time.Now()
	m.contracts[id] = contract
	return true, nil
}

func (m *Memory) CreateContractVersion(_ context.Context, version *models.ContractVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.contractVersions[version.ContractID] {
		if v.VersionNumber == version.VersionNumber {
			return fmt.Errorf("contract %d already has version %d", version.ContractID, version.VersionNumber)
		}
	}

	version.ID = m.nextID()
	version.SavedAt = time.Now()
	m.contractVersions[version.ContractID] = append(m.contractVersions[version.ContractID], *version)
	return nil
}

func (m *Memory) ListContractVersions(_ context.Context, contractID int64) ([]models.ContractVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := append([]models.ContractVersion(nil), m.contractVersions[contractID]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber > versions[j].VersionNumber })
	return versions, nil
}
