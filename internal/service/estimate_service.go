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

var estimateStatuses = map[string]bool{
	models.EstimateStatusPending:   true,
	models.EstimateStatusReviewing: true,
	models.EstimateStatusQuoted:    true,
	models.EstimateStatusClosed:    true,
}

// EstimateResult is the outcome of an estimate request submission
type EstimateResult struct {
	Request   *models.EstimateRequest `json:"data"`
	EmailSent bool                    `json:"emailSent"`
}

// EstimateService handles estimate request intake
type EstimateService struct {
	store      store.Repository
	events     EventPublisher
	notifier   Notifier
	adminEmail string
	logger     *zap.Logger
}

// NewEstimateService creates a new estimate service. notifier may be nil.
func NewEstimateService(repo store.Repository, events EventPublisher, notifier Notifier, adminEmail string) *EstimateService {
	if events == nil {
		events = noopEvents{}
	}
	return &EstimateService{
		store:      repo,
		events:     events,
		notifier:   notifier,
		adminEmail: adminEmail,
		logger:     util.GetLogger(),
	}
}

// Create stores an estimate request and notifies the customer and the admin.
// Notification problems never fail the request.
func (s *EstimateService) Create(ctx context.Context, req *models.EstimateRequest) (*EstimateResult, error) {
	ctx, span := util.StartSpan(ctx, "EstimateService.Create")
	defer span.End()

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if req.CustomerName == "" {
		return nil, validationError("customer_name is required")
	}
	if req.CustomerPhone == "" {
		return nil, validationError("customer_phone is required")
	}
	req.Status = models.EstimateStatusPending

	if err := s.store.CreateEstimateRequest(ctx, req); err != nil {
		return nil, storeError("create estimate request", err)
	}
	util.EstimateRequestsTotal.Inc()

	if err := s.events.PublishEstimateRequested(ctx, req); err != nil {
		s.logger.Error("Failed to publish EstimateRequested event", zap.Error(err))
	}

	s.logger.Info("Estimate request received",
		zap.Int64("estimate_request_id", req.ID),
		zap.String("property_type", req.PropertyType))

	return &EstimateResult{Request: req, EmailSent: s.notifyReceived(ctx, req)}, nil
}

// notifyReceived reports whether every applicable notification was queued
func (s *EstimateService) notifyReceived(ctx context.Context, req *models.EstimateRequest) bool {
	if s.notifier == nil {
		return false
	}

	data := map[string]string{
		"customer_name":    req.CustomerName,
		"customer_phone":   req.CustomerPhone,
		"property_type":    req.PropertyType,
		"property_address": req.PropertyAddress,
		"budget":           req.Budget,
		"schedule":         req.Schedule,
		"message":          req.Message,
		"request_id":       fmt.Sprintf("%d", req.ID),
	}

	sent := true
	send := func(kind, recipient string) {
		if recipient == "" {
			return
		}
		if err := s.notifier.Notify(ctx, kind, recipient, data); err != nil {
			sent = false
			util.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
			s.logger.Warn("Failed to queue notification",
				zap.String("kind", kind),
				zap.Int64("estimate_request_id", req.ID),
				zap.Error(err))
			return
		}
		util.NotificationsTotal.WithLabelValues(kind, "queued").Inc()
	}

	send(models.NotificationEstimateReceived, req.CustomerEmail)
	send(models.NotificationEstimateAdmin, s.adminEmail)
	return sent
}

// Get retrieves an estimate request by ID
func (s *EstimateService) Get(ctx context.Context, id int64) (*models.EstimateRequest, error) {
	if id <= 0 {
		return nil, validationError("id is required")
	}
	req, err := s.store.GetEstimateRequest(ctx, id)
	if err != nil {
		return nil, storeError("get estimate request", err)
	}
	return req, nil
}

// List lists estimate requests, newest first
func (s *EstimateService) List(ctx context.Context) ([]models.EstimateRequest, error) {
	reqs, err := s.store.ListEstimateRequests(ctx)
	if err != nil {
		return nil, storeError("list estimate requests", err)
	}
	return reqs, nil
}

// UpdateStatus moves an estimate request through the review workflow
func (s *EstimateService) UpdateStatus(ctx context.Context, id int64, status string) (*models.EstimateRequest, error) {
	if id <= 0 {
		return nil, validationError("id is required")
	}
	if !estimateStatuses[status] {
		return nil, validationError("invalid status %q", status)
	}

	if err := s.store.UpdateEstimateRequestStatus(ctx, id, status); err != nil {
		return nil, storeError("update estimate request status", err)
	}
	return s.Get(ctx, id)
}
