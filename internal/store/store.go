package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"estimate-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, ErrUnconfigured
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing connection
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateEstimateRequest stores a new estimate request
func (s *Store) CreateEstimateRequest(ctx context.Context, req *models.EstimateRequest) error {
	query := `
		INSERT INTO estimate_requests (customer_name, customer_phone, customer_email, property_type,
			property_size, property_address, budget, schedule, message, status)
		VALUES (:customer_name, :customer_phone, :customer_email, :property_type,
			:property_size, :property_address, :budget, :schedule, :message, :status)
		RETURNING id, created_at, updated_at`

	return s.namedGet(ctx, req, query, req)
}

// GetEstimateRequest retrieves an estimate request by ID
func (s *Store) GetEstimateRequest(ctx context.Context, id int64) (*models.EstimateRequest, error) {
	var req models.EstimateRequest
	err := s.db.GetContext(ctx, &req, "SELECT * FROM estimate_requests WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("estimate request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListEstimateRequests retrieves estimate requests, newest first
func (s *Store) ListEstimateRequests(ctx context.Context) ([]models.EstimateRequest, error) {
	reqs := []models.EstimateRequest{}
	err := s.db.SelectContext(ctx, &reqs,
		"SELECT * FROM estimate_requests ORDER BY created_at DESC, id DESC")
	return reqs, err
}

// UpdateEstimateRequestStatus updates estimate request status
func (s *Store) UpdateEstimateRequestStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE estimate_requests SET status = $1, updated_at = NOW() WHERE id = $2",
		status, id)
	if err != nil {
		return err
	}
	return requireRow(res, "estimate request", id)
}

// CreateExtractedItem stores an extracted line item
func (s *Store) CreateExtractedItem(ctx context.Context, item *models.ExtractedItem) error {
	query := `
		INSERT INTO extracted_items (category, sub_category, detail_category, canonical_name,
			original_name, brand, product_grade, unit, quantity, unit_price, total_price, is_verified)
		VALUES (:category, :sub_category, :detail_category, :canonical_name,
			:original_name, :brand, :product_grade, :unit, :quantity, :unit_price, :total_price, :is_verified)
		RETURNING id, created_at, updated_at`

	return s.namedGet(ctx, item, query, item)
}

// GetExtractedItem retrieves an extracted item by ID
func (s *Store) GetExtractedItem(ctx context.Context, id int64) (*models.ExtractedItem, error) {
	var item models.ExtractedItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM extracted_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extracted item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListExtractedItems retrieves extracted items, optionally filtered by verification
func (s *Store) ListExtractedItems(ctx context.Context, verified *bool) ([]models.ExtractedItem, error) {
	items := []models.ExtractedItem{}
	if verified == nil {
		err := s.db.SelectContext(ctx, &items, "SELECT * FROM extracted_items ORDER BY id")
		return items, err
	}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM extracted_items WHERE is_verified = $1 ORDER BY id", *verified)
	return items, err
}

// UpdateExtractedItem overwrites the editable fields of an extracted item
func (s *Store) UpdateExtractedItem(ctx context.Context, item *models.ExtractedItem) error {
	query := `
		UPDATE extracted_items SET category = :category, sub_category = :sub_category,
			detail_category = :detail_category, canonical_name = :canonical_name,
			original_name = :original_name, brand = :brand, product_grade = :product_grade,
			unit = :unit, quantity = :quantity, unit_price = :unit_price, total_price = :total_price,
			updated_at = NOW()
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return err
	}
	return requireRow(res, "extracted item", item.ID)
}

// SetExtractedItemVerified sets the verified flag of an extracted item
func (s *Store) SetExtractedItemVerified(ctx context.Context, id int64, verified bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE extracted_items SET is_verified = $1, updated_at = NOW() WHERE id = $2",
		verified, id)
	if err != nil {
		return err
	}
	return requireRow(res, "extracted item", id)
}

// FindStandardPrice looks up the catalog entry for (category, product name).
// It returns nil without error when no entry exists.
func (s *Store) FindStandardPrice(ctx context.Context, category, productName string) (*models.StandardPrice, error) {
	var price models.StandardPrice
	err := s.db.GetContext(ctx, &price,
		"SELECT * FROM standard_prices WHERE category = $1 AND product_name = $2 LIMIT 1",
		category, productName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// CreateStandardPrice inserts a catalog entry
func (s *Store) CreateStandardPrice(ctx context.Context, price *models.StandardPrice) error {
	query := `
		INSERT INTO standard_prices (price_type, category, sub_category, detail_category, product_name,
			brand, product_grade, unit, unit_price, source, is_verified, is_active, price_date)
		VALUES (:price_type, :category, :sub_category, :detail_category, :product_name,
			:brand, :product_grade, :unit, :unit_price, :source, :is_verified, :is_active, :price_date)
		RETURNING id, created_at, updated_at`

	return s.namedGet(ctx, price, query, price)
}

// UpdateStandardPrice updates a catalog entry in place
func (s *Store) UpdateStandardPrice(ctx context.Context, price *models.StandardPrice) error {
	query := `
		UPDATE standard_prices SET brand = :brand, product_grade = :product_grade, unit = :unit,
			unit_price = :unit_price, source = :source, is_verified = :is_verified,
			price_date = :price_date, updated_at = NOW()
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, price)
	if err != nil {
		return err
	}
	return requireRow(res, "standard price", price.ID)
}

// ListStandardPrices retrieves active catalog entries of one price type
func (s *Store) ListStandardPrices(ctx context.Context, priceType string) ([]models.StandardPrice, error) {
	prices := []models.StandardPrice{}
	err := s.db.SelectContext(ctx, &prices,
		"SELECT * FROM standard_prices WHERE price_type = $1 AND is_active ORDER BY category, product_name",
		priceType)
	return prices, err
}

// namedGet runs a named query and scans the single returned row into dest
func (s *Store) namedGet(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	stmt, err := s.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, dest, arg)
}

func requireRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
