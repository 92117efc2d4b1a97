package service

import (
	"context"
	"fmt"
	"strings"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"go.uber.org/zap"
)

const (
	// DefaultVersionReason is recorded when the caller gives no reason
	DefaultVersionReason = "수정"
	// ContractSignedReason is recorded on the snapshot taken at signature time
	ContractSignedReason = "customer signature completed"
	// contractSignatureVersion is the only version number a contract gets
	contractSignatureVersion = 1
)

// QuoteSnapshot is the result of saving a quote version.
// ItemsCopied is false when the version row exists but its items could not be copied.
type QuoteSnapshot struct {
	Version     *models.QuoteVersion `json:"version"`
	ItemsCopied bool                 `json:"items_copied"`
	Warning     string               `json:"warning,omitempty"`
}

// VersionService takes immutable snapshots of quotes and contracts
type VersionService struct {
	store  store.Repository
	events EventPublisher
	logger *zap.Logger
}

// NewVersionService creates a new version service
func NewVersionService(repo store.Repository, events EventPublisher) *VersionService {
	if events == nil {
		events = noopEvents{}
	}
	return &VersionService{
		store:  repo,
		events: events,
		logger: util.GetLogger(),
	}
}

// SnapshotQuote copies the live quote and its items into a new version.
// The version row is kept even if copying the items fails; the result
// then carries ItemsCopied=false. The returned version is re-read from
// the store so it reflects exactly what was persisted.
func (s *VersionService) SnapshotQuote(ctx context.Context, quoteID int64, reason string) (*QuoteSnapshot, error) {
	ctx, span := util.StartSpan(ctx, "VersionService.SnapshotQuote")
	defer span.End()

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

	next, err := s.store.NextQuoteVersionNumber(ctx, quoteID)
	if err != nil {
		return nil, storeError("next quote version number", err)
	}

	version := newQuoteVersion(quote, next, reason)
	if err := s.store.CreateQuoteVersion(ctx, version); err != nil {
		return nil, storeError("create quote version", err)
	}
	util.VersionsCreatedTotal.WithLabelValues("quote").Inc()

	result := &QuoteSnapshot{ItemsCopied: true}
	if err := s.store.CreateQuoteVersionItems(ctx, newQuoteVersionItems(version.ID, items)); err != nil {
		util.VersionItemCopyFailedTotal.Inc()
		s.logger.Error("Quote version saved without items",
			zap.Int64("quote_id", quoteID),
			zap.Int64("version_id", version.ID),
			zap.Int("item_count", len(items)),
			zap.Error(err))
		result.ItemsCopied = false
		result.Warning = fmt.Sprintf("version %d saved but its %d items could not be copied", next, len(items))
	}

	saved, err := s.GetQuoteVersion(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	result.Version = saved

	if err := s.events.PublishQuoteVersionSaved(ctx, saved); err != nil {
		s.logger.Error("Failed to publish QuoteVersionSaved event", zap.Error(err))
	}

	s.logger.Info("Quote version saved",
		zap.Int64("quote_id", quoteID),
		zap.Int("version_number", saved.VersionNumber),
		zap.String("reason", saved.SavedReason))
	return result, nil
}

// GetQuoteVersion retrieves a version with its copied items
func (s *VersionService) GetQuoteVersion(ctx context.Context, versionID int64) (*models.QuoteVersion, error) {
	if versionID <= 0 {
		return nil, validationError("version id is required")
	}

	version, err := s.store.GetQuoteVersion(ctx, versionID)
	if err != nil {
		return nil, storeError("get quote version", err)
	}

	items, err := s.store.GetQuoteVersionItems(ctx, versionID)
	if err != nil {
		return nil, storeError("get quote version items", err)
	}
	version.Items = items
	return version, nil
}

// ListQuoteVersions lists versions of a quote, highest version first
func (s *VersionService) ListQuoteVersions(ctx context.Context, quoteID int64) ([]models.QuoteVersion, error) {
	if quoteID <= 0 {
		return nil, validationError("quote_id is required")
	}

	versions, err := s.store.ListQuoteVersions(ctx, quoteID)
	if err != nil {
		return nil, storeError("list quote versions", err)
	}
	return versions, nil
}

// SnapshotContract records the signature-time snapshot of a contract
func (s *VersionService) SnapshotContract(ctx context.Context, contract *models.Contract, reason string) (*models.ContractVersion, error) {
	ctx, span := util.StartSpan(ctx, "VersionService.SnapshotContract")
	defer span.End()

	version := &models.ContractVersion{
		ContractID:      contract.ID,
		VersionNumber:   contractSignatureVersion,
		ContractNumber:  contract.ContractNumber,
		CustomerName:    contract.CustomerName,
		CustomerPhone:   contract.CustomerPhone,
		CustomerEmail:   contract.CustomerEmail,
		PropertyAddress: contract.PropertyAddress,
		ContractAmount:  contract.ContractAmount,
		StartDate:       contract.StartDate,
		EndDate:         contract.EndDate,
		Status:          contract.Status,
		SignatureURL:    contract.SignatureURL,
		SignedAt:        contract.SignedAt,
		SavedReason:     orDefault(reason, ContractSignedReason),
		PaymentSchedule: contract.PaymentSchedule,
	}

	if err := s.store.CreateContractVersion(ctx, version); err != nil {
		return nil, storeError("create contract version", err)
	}
	util.VersionsCreatedTotal.WithLabelValues("contract").Inc()
	return version, nil
}

// ListContractVersions lists versions of a contract, highest version first
func (s *VersionService) ListContractVersions(ctx context.Context, contractID int64) ([]models.ContractVersion, error) {
	if contractID <= 0 {
		return nil, validationError("contract_id is required")
	}

	versions, err := s.store.ListContractVersions(ctx, contractID)
	if err != nil {
		return nil, storeError("list contract versions", err)
	}
	return versions, nil
}

func newQuoteVersion(quote *models.Quote, number int, reason string) *models.QuoteVersion {
	return &models.QuoteVersion{
		QuoteID:         quote.ID,
		VersionNumber:   number,
		QuoteNumber:     fmt.Sprintf("%s-v%d", quote.QuoteNumber, number),
		CustomerName:    quote.CustomerName,
		CustomerPhone:   quote.CustomerPhone,
		CustomerEmail:   quote.CustomerEmail,
		PropertyAddress: quote.PropertyAddress,
		PropertyType:    quote.PropertyType,
		PropertySize:    quote.PropertySize,
		Status:          quote.Status,
		LaborCost:       quote.LaborCost,
		MaterialCost:    quote.MaterialCost,
		OtherCost:       quote.OtherCost,
		Discount:        quote.Discount,
		VAT:             quote.VAT,
		FinalAmount:     quote.FinalAmount,
		Notes:           quote.Notes,
		SavedReason:     orDefault(strings.TrimSpace(reason), DefaultVersionReason),
	}
}

func newQuoteVersionItems(versionID int64, items []models.QuoteItem) []models.QuoteVersionItem {
	copies := make([]models.QuoteVersionItem, 0, len(items))
	for _, item := range items {
		copies = append(copies, models.QuoteVersionItem{
			VersionID:  versionID,
			Category:   item.Category,
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			CostType:   item.CostType,
			LaborRatio: item.LaborRatio,
			SortOrder:  item.SortOrder,
			IsOptional: item.IsOptional,
			IsIncluded: item.IsIncluded,
			Note:       item.Note,
		})
	}
	return copies
}
