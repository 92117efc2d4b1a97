package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the part of Producer the EventPublisher needs
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer Publisher
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer Publisher) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishEstimateRequested publishes EstimateRequested event
func (ep *EventPublisher) PublishEstimateRequested(ctx context.Context, req *models.EstimateRequest) error {
	event := &models.EstimateRequestedEvent{
		BaseEvent:         newBaseEvent(models.EventTypeEstimateRequested),
		EstimateRequestID: req.ID,
		CustomerName:      req.CustomerName,
		PropertyType:      req.PropertyType,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("estimate-%d", req.ID), event)
}

// PublishCatalogPriceUpdated publishes CatalogPriceUpdated event.
// Keyed by catalog entry so updates of one entry stay ordered.
func (ep *EventPublisher) PublishCatalogPriceUpdated(ctx context.Context, price *models.StandardPrice, itemID int64, created bool) error {
	event := &models.CatalogPriceUpdatedEvent{
		BaseEvent:       newBaseEvent(models.EventTypeCatalogPriceUpdated),
		StandardPriceID: price.ID,
		ExtractedItemID: itemID,
		Category:        price.Category,
		ProductName:     price.ProductName,
		UnitPrice:       price.UnitPrice,
		Created:         created,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("standard-price-%d", price.ID), event)
}

// PublishQuoteVersionSaved publishes QuoteVersionSaved event
func (ep *EventPublisher) PublishQuoteVersionSaved(ctx context.Context, version *models.QuoteVersion) error {
	event := &models.QuoteVersionSavedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeQuoteVersionSaved),
		QuoteID:       version.QuoteID,
		VersionID:     version.ID,
		VersionNumber: version.VersionNumber,
		FinalAmount:   version.FinalAmount,
		Reason:        version.SavedReason,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("quote-%d", version.QuoteID), event)
}

// PublishContractSigned publishes ContractSigned event
func (ep *EventPublisher) PublishContractSigned(ctx context.Context, contract *models.Contract) error {
	event := &models.ContractSignedEvent{
		BaseEvent:      newBaseEvent(models.EventTypeContractSigned),
		ContractID:     contract.ID,
		ContractNumber: contract.ContractNumber,
		ContractAmount: contract.ContractAmount,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("contract-%d", contract.ID), event)
}

// Notify queues an email for the notification worker
func (ep *EventPublisher) Notify(ctx context.Context, kind, recipient string, data map[string]string) error {
	event := &models.NotificationRequestedEvent{
		BaseEvent: newBaseEvent(models.EventTypeNotificationRequested),
		Kind:      kind,
		Recipient: recipient,
		Data:      data,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("notification-%s", recipient), event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onNotification func(context.Context, *models.NotificationRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnNotification registers a handler for NotificationRequested events
func (eh *EventHandler) OnNotification(handler func(context.Context, *models.NotificationRequestedEvent) error) {
	eh.onNotification = handler
}

// HandleMessage routes messages to appropriate handlers.
// Event types without a registered handler are acknowledged and dropped.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	util.GetLogger().Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeNotificationRequested:
		if eh.onNotification != nil {
			var event models.NotificationRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal NotificationRequested event: %w", err)
			}
			return eh.onNotification(ctx, &event)
		}
	}

	return nil
}
