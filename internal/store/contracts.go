package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"estimate-service/internal/models"
)

// CreateContract creates a new contract
func (s *Store) CreateContract(ctx context.Context, contract *models.Contract) error {
	query := `
		INSERT INTO contracts (contract_number, quote_id, customer_name, customer_phone, customer_email,
			property_address, contract_amount, deposit_amount, deposit_due_date, first_payment_amount,
			first_payment_due_date, second_payment_amount, second_payment_due_date, final_payment_amount,
			final_payment_due_date, start_date, end_date, status)
		VALUES (:contract_number, :quote_id, :customer_name, :customer_phone, :customer_email,
			:property_address, :contract_amount, :deposit_amount, :deposit_due_date, :first_payment_amount,
			:first_payment_due_date, :second_payment_amount, :second_payment_due_date, :final_payment_amount,
			:final_payment_due_date, :start_date, :end_date, :status)
		RETURNING id, created_at, updated_at`

	return s.namedGet(ctx, contract, query, contract)
}

// GetContract retrieves a contract by ID
func (s *Store) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	var contract models.Contract
	err := s.db.GetContext(ctx, &contract, "SELECT * FROM contracts WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contract %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListContracts retrieves contracts, newest first
func (s *Store) ListContracts(ctx context.Context) ([]models.Contract, error) {
	contracts := []models.Contract{}
	err := s.db.SelectContext(ctx, &contracts, "SELECT * FROM contracts ORDER BY created_at DESC, id DESC")
	return contracts, err
}

// SignContract marks a pending contract as signed.
// The status guard in the WHERE clause makes the transition one-way.
func (s *Store) SignContract(ctx context.Context, id int64, signatureURL string, signedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET status = $1, signature_url = $2, signed_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		models.ContractStatusSigned, signatureURL, signedAt, id, models.ContractStatusPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CreateContractVersion inserts a contract snapshot row
func (s *Store) CreateContractVersion(ctx context.Context, version *models.ContractVersion) error {
	query := `
		INSERT INTO contract_versions (contract_id, version_number, contract_number, customer_name,
			customer_phone, customer_email, property_address, contract_amount, deposit_amount,
			deposit_due_date, first_payment_amount, first_payment_due_date, second_payment_amount,
			second_payment_due_date, final_payment_amount, final_payment_due_date, start_date, end_date,
			status, signature_url, signed_at, saved_reason)
		VALUES (:contract_id, :version_number, :contract_number, :customer_name,
			:customer_phone, :customer_email, :property_address, :contract_amount, :deposit_amount,
			:deposit_due_date, :first_payment_amount, :first_payment_due_date, :second_payment_amount,
			:second_payment_due_date, :final_payment_amount, :final_payment_due_date, :start_date, :end_date,
			:status, :signature_url, :signed_at, :saved_reason)
		RETURNING id, saved_at`

	return s.namedGet(ctx, version, query, version)
}

// ListContractVersions retrieves versions of a contract, highest version first
func (s *Store) ListContractVersions(ctx context.Context, contractID int64) ([]models.ContractVersion, error) {
	versions := []models.ContractVersion{}
	err := s.db.SelectContext(ctx, &versions,
		"SELECT * FROM contract_versions WHERE contract_id = $1 ORDER BY version_number DESC", contractID)
	return versions, err
}
