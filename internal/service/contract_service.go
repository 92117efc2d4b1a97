package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNotDataURI = errors.New("signature is not a base64 data URI")

var signatureExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// ContractService manages contracts and the one-way signing transition
type ContractService struct {
	store    store.Repository
	versions *VersionService
	uploader Uploader
	events   EventPublisher
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewContractService creates a new contract service.
// uploader and notifier may be nil; signatures are then stored inline.
func NewContractService(
	repo store.Repository,
	versions *VersionService,
	uploader Uploader,
	events EventPublisher,
	notifier Notifier,
) *ContractService {
	if events == nil {
		events = noopEvents{}
	}
	return &ContractService{
		store:    repo,
		versions: versions,
		uploader: uploader,
		events:   events,
		notifier: notifier,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// Create stores a new pending contract
func (s *ContractService) Create(ctx context.Context, contract *models.Contract) error {
	contract.CustomerName = strings.TrimSpace(contract.CustomerName)
	if contract.CustomerName == "" {
		return validationError("customer_name is required")
	}
	if contract.ContractAmount < 0 {
		return validationError("contract_amount must not be negative")
	}
	if contract.ContractNumber == "" {
		contract.ContractNumber = documentNumber("C", s.now())
	}
	contract.Status = models.ContractStatusPending
	contract.SignatureURL = ""
	contract.SignedAt = nil

	if err := s.store.CreateContract(ctx, contract); err != nil {
		return storeError("create contract", err)
	}
	return nil
}

// Get retrieves a contract by ID
func (s *ContractService) Get(ctx context.Context, contractID int64) (*models.Contract, error) {
	if contractID <= 0 {
		return nil, validationError("contract_id is required")
	}
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	return contract, nil
}

// List lists contracts, newest first
func (s *ContractService) List(ctx context.Context) ([]models.Contract, error) {
	contracts, err := s.store.ListContracts(ctx)
	if err != nil {
		return nil, storeError("list contracts", err)
	}
	return contracts, nil
}

// Sign moves a pending contract to signed, stores the signature image and
// records the signature-time snapshot. A signed or cancelled contract is
// rejected with ErrConflict and left untouched.
func (s *ContractService) Sign(ctx context.Context, contractID int64, signatureData string) (*models.Contract, error) {
	ctx, span := util.StartSpan(ctx, "ContractService.Sign")
	defer span.End()

	if contractID <= 0 {
		return nil, validationError("contract_id is required")
	}
	if strings.TrimSpace(signatureData) == "" {
		return nil, validationError("signature_data is required")
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	switch contract.Status {
	case models.ContractStatusSigned:
		return nil, conflictError("contract %d is already signed", contractID)
	case models.ContractStatusCancelled:
		return nil, conflictError("contract %d is cancelled", contractID)
	}

	signedAt := s.now()
	signatureURL := s.storeSignature(ctx, contractID, signatureData, signedAt)

	applied, err := s.store.SignContract(ctx, contractID, signatureURL, signedAt)
	if err != nil {
		return nil, storeError("sign contract", err)
	}
	if !applied {
		// lost a race with another signer
		return nil, conflictError("contract %d is no longer pending", contractID)
	}
	util.ContractsSignedTotal.Inc()

	// the transition is committed; a failed re-read must not skip the snapshot
	signed, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		s.logger.Warn("Failed to re-read signed contract, using local copy",
			zap.Int64("contract_id", contractID),
			zap.Error(err))
		signed = contract
		signed.Status = models.ContractStatusSigned
		signed.SignatureURL = signatureURL
		signed.SignedAt = &signedAt
	}

	if _, err := s.versions.SnapshotContract(ctx, signed, ContractSignedReason); err != nil {
		s.logger.Error("Failed to snapshot signed contract",
			zap.Int64("contract_id", contractID),
			zap.Error(err))
	}

	if err := s.events.PublishContractSigned(ctx, signed); err != nil {
		s.logger.Error("Failed to publish ContractSigned event", zap.Error(err))
	}
	s.notifySigned(ctx, signed)

	s.logger.Info("Contract signed",
		zap.Int64("contract_id", contractID),
		zap.String("contract_number", signed.ContractNumber))
	return signed, nil
}

// storeSignature uploads the decoded image and returns its URL.
// Any decode or upload problem falls back to keeping the raw data URI.
func (s *ContractService) storeSignature(ctx context.Context, contractID int64, signatureData string, at time.Time) string {
	if s.uploader == nil {
		return signatureData
	}

	contentType, data, err := decodeDataURI(signatureData)
	if err != nil {
		s.logger.Warn("Keeping signature inline", zap.Int64("contract_id", contractID), zap.Error(err))
		util.SignatureUploadFallbackTotal.Inc()
		return signatureData
	}

	ext, ok := signatureExtensions[contentType]
	if !ok {
		ext = "bin"
	}
	path := fmt.Sprintf("signatures/contract-%d-%d.%s", contractID, at.Unix(), ext)

	url, err := s.uploader.Upload(ctx, path, data, contentType)
	if err != nil {
		s.logger.Warn("Signature upload failed, keeping it inline",
			zap.Int64("contract_id", contractID),
			zap.Error(err))
		util.SignatureUploadFallbackTotal.Inc()
		return signatureData
	}
	return url
}

func (s *ContractService) notifySigned(ctx context.Context, contract *models.Contract) {
	if s.notifier == nil || contract.CustomerEmail == "" {
		return
	}
	data := map[string]string{
		"customer_name":   contract.CustomerName,
		"contract_number": contract.ContractNumber,
		"contract_amount": fmt.Sprintf("%d", contract.ContractAmount),
	}
	if err := s.notifier.Notify(ctx, models.NotificationContractSigned, contract.CustomerEmail, data); err != nil {
		util.NotificationsTotal.WithLabelValues(models.NotificationContractSigned, "failed").Inc()
		s.logger.Warn("Failed to queue contract signed notification", zap.Error(err))
		return
	}
	util.NotificationsTotal.WithLabelValues(models.NotificationContractSigned, "queued").Inc()
}

// decodeDataURI splits "data:<type>;base64,<payload>" into type and bytes
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errNotDataURI
	}
	contentType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, errNotDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode signature: %w", err)
	}
	return contentType, data, nil
}

// documentNumber builds numbers like Q-20261015-1a2b3c4d
func documentNumber(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), uuid.New().String()[:8])
}
