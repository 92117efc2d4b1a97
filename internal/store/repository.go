package store

import (
	"context"
	"errors"
	"time"

	"estimate-service/internal/models"
)

var (
	// ErrNotFound is returned by single-row fetches when no row matches
	ErrNotFound = errors.New("record not found")

	// ErrUnconfigured is returned when no database URL is configured.
	// Callers switch to the in-memory store when they see it.
	ErrUnconfigured = errors.New("record store is not configured")
)

// Repository is the record store used by the services.
// Store (Postgres) and Memory implement it; one is picked at startup.
type Repository interface {
	// Estimate requests
	CreateEstimateRequest(ctx context.Context, req *models.EstimateRequest) error
	GetEstimateRequest(ctx context.Context, id int64) (*models.EstimateRequest, error)
	ListEstimateRequests(ctx context.Context) ([]models.EstimateRequest, error)
	UpdateEstimateRequestStatus(ctx context.Context, id int64, status string) error

	// Extracted items
	CreateExtractedItem(ctx context.Context, item *models.ExtractedItem) error
	GetExtractedItem(ctx context.Context, id int64) (*models.ExtractedItem, error)
	ListExtractedItems(ctx context.Context, verified *bool) ([]models.ExtractedItem, error)
	UpdateExtractedItem(ctx context.Context, item *models.ExtractedItem) error
	SetExtractedItemVerified(ctx context.Context, id int64, verified bool) error

	// Standard price catalog. FindStandardPrice returns (nil, nil) when absent.
	FindStandardPrice(ctx context.Context, category, productName string) (*models.StandardPrice, error)
	CreateStandardPrice(ctx context.Context, price *models.StandardPrice) error
	UpdateStandardPrice(ctx context.Context, price *models.StandardPrice) error
	ListStandardPrices(ctx context.Context, priceType string) ([]models.StandardPrice, error)

	// Quotes
	CreateQuote(ctx context.Context, quote *models.Quote) error
	GetQuote(ctx context.Context, id int64) (*models.Quote, error)
	ListQuotes(ctx context.Context) ([]models.Quote, error)
	CreateQuoteItem(ctx context.Context, item *models.QuoteItem) error
	GetQuoteItems(ctx context.Context, quoteID int64) ([]models.QuoteItem, error)

	// Quote versions (append-only)
	NextQuoteVersionNumber(ctx context.Context, quoteID int64) (int, error)
	CreateQuoteVersion(ctx context.Context, version *models.QuoteVersion) error
	CreateQuoteVersionItems(ctx context.Context, items []models.QuoteVersionItem) error
	GetQuoteVersion(ctx context.Context, id int64) (*models.QuoteVersion, error)
	GetQuoteVersionItems(ctx context.Context, versionID int64) ([]models.QuoteVersionItem, error)
	ListQuoteVersions(ctx context.Context, quoteID int64) ([]models.QuoteVersion, error)

	// Contracts
	CreateContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	ListContracts(ctx context.Context) ([]models.Contract, error)
	// SignContract moves a pending contract to signed. It reports false
	// without writing anything when the contract is not pending.
	SignContract(ctx context.Context, id int64, signatureURL string, signedAt time.Time) (bool, error)

	// Contract versions (append-only)
	CreateContractVersion(ctx context.Context, version *models.ContractVersion) error
	ListContractVersions(ctx context.Context, contractID int64) ([]models.ContractVersion, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*Memory)(nil)
)
