package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"estimate-service/internal/models"
)

// CreateQuote creates a new quote. Items are inserted separately.
func (s *Store) CreateQuote(ctx context.Context, quote *models.Quote) error {
	query := `
		INSERT INTO quotes (quote_number, estimate_request_id, customer_name, customer_phone,
			customer_email, property_address, property_type, property_size, status, labor_cost,
			material_cost, other_cost, discount, vat, final_amount, notes, valid_until)
		VALUES (:quote_number, :estimate_request_id, :customer_name, :customer_phone,
			:customer_email, :property_address, :property_type, :property_size, :status, :labor_cost,
			:material_cost, :other_cost, :discount, :vat, :final_amount, :notes, :valid_until)
		RETURNING id, created_at, updated_at`

	return s.namedGet(ctx, quote, query, quote)
}

// GetQuote retrieves a quote by ID without its items
func (s *Store) GetQuote(ctx context.Context, id int64) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.GetContext(ctx, &quote, "SELECT * FROM quotes WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListQuotes retrieves quotes, newest first
func (s *Store) ListQuotes(ctx context.Context) ([]models.Quote, error) {
	quotes := []models.Quote{}
	err := s.db.SelectContext(ctx, &quotes, "SELECT * FROM quotes ORDER BY created_at DESC, id DESC")
	return quotes, err
}

// CreateQuoteItem creates a new quote item
func (s *Store) CreateQuoteItem(ctx context.Context, item *models.QuoteItem) error {
	query := `
		INSERT INTO quote_items (quote_id, category, item_name, quantity, unit, unit_price, total_price,
			cost_type, labor_ratio, sort_order, is_optional, is_included, standard_price_id, note)
		VALUES (:quote_id, :category, :item_name, :quantity, :unit, :unit_price, :total_price,
			:cost_type, :labor_ratio, :sort_order, :is_optional, :is_included, :standard_price_id, :note)
		RETURNING id`

	return s.namedGet(ctx, &item.ID, query, item)
}

// GetQuoteItems retrieves all items for a quote in display order
func (s *Store) GetQuoteItems(ctx context.Context, quoteID int64) ([]models.QuoteItem, error) {
	items := []models.QuoteItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM quote_items WHERE quote_id = $1 ORDER BY sort_order, id", quoteID)
	return items, err
}

// NextQuoteVersionNumber reserves the next version number for a quote.
// The counter on the quote row only moves forward, so a number is never
// handed out twice even if a version row disappears. The row lock taken by
// the UPDATE serializes concurrent snapshots of the same quote.
func (s *Store) NextQuoteVersionNumber(ctx context.Context, quoteID int64) (int, error) {
	query := `
		UPDATE quotes
		SET last_version_number = GREATEST(
				last_version_number,
				COALESCE((SELECT MAX(version_number) FROM quote_versions WHERE quote_id = $1), 0)
			) + 1
		WHERE id = $1
		RETURNING last_version_number`

	var next int
	err := s.db.GetContext(ctx, &next, query, quoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("quote %d: %w", quoteID, ErrNotFound)
	}
	return next, err
}

// CreateQuoteVersion inserts a quote snapshot row
func (s *Store) CreateQuoteVersion(ctx context.Context, version *models.QuoteVersion) error {
	query := `
		INSERT INTO quote_versions (quote_id, version_number, quote_number, customer_name,
			customer_phone, customer_email, property_address, property_type, property_size, status,
			labor_cost, material_cost, other_cost, discount, vat, final_amount, notes, saved_reason)
		VALUES (:quote_id, :version_number, :quote_number, :customer_name,
			:customer_phone, :customer_email, :property_address, :property_type, :property_size, :status,
			:labor_cost, :material_cost, :other_cost, :discount, :vat, :final_amount, :notes, :saved_reason)
		RETURNING id, saved_at`

	return s.namedGet(ctx, version, query, version)
}

// CreateQuoteVersionItems inserts the copied items of a version in one statement
func (s *Store) CreateQuoteVersionItems(ctx context.Context, items []models.QuoteVersionItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO quote_version_items (version_id, category, item_name, quantity, unit, unit_price,
			total_price, cost_type, labor_ratio, sort_order, is_optional, is_included, note)
		VALUES (:version_id, :category, :item_name, :quantity, :unit, :unit_price,
			:total_price, :cost_type, :labor_ratio, :sort_order, :is_optional, :is_included, :note)`

	_, err := s.db.NamedExecContext(ctx, query, items)
	return err
}

// GetQuoteVersion retrieves a quote version by ID without its items
func (s *Store) GetQuoteVersion(ctx context.Context, id int64) (*models.QuoteVersion, error) {
	var version models.QuoteVersion
	err := s.db.GetContext(ctx, &version, "SELECT * FROM quote_versions WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote version %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetQuoteVersionItems retrieves the copied items of a version
func (s *Store) GetQuoteVersionItems(ctx context.Context, versionID int64) ([]models.QuoteVersionItem, error) {
	items := []models.QuoteVersionItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM quote_version_items WHERE version_id = $1 ORDER BY sort_order, id", versionID)
	return items, err
}

// ListQuoteVersions retrieves versions of a quote, highest version first
func (s *Store) ListQuoteVersions(ctx context.Context, quoteID int64) ([]models.QuoteVersion, error) {
	versions := []models.QuoteVersion{}
	err := s.db.SelectContext(ctx, &versions,
		"SELECT * FROM quote_versions WHERE quote_id = $1 ORDER BY version_number DESC", quoteID)
	return versions, err
}
