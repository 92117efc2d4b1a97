package models

import "time"

// Event types
const (
	EventTypeEstimateRequested     = "ESTIMATE_REQUESTED"
	EventTypeCatalogPriceUpdated   = "CATALOG_PRICE_UPDATED"
	EventTypeQuoteVersionSaved     = "QUOTE_VERSION_SAVED"
	EventTypeContractSigned        = "CONTRACT_SIGNED"
	EventTypeNotificationRequested = "NOTIFICATION_REQUESTED"
)

// Notification kinds
const (
	NotificationEstimateReceived = "estimate_received"
	NotificationEstimateAdmin    = "estimate_admin_alert"
	NotificationContractSigned   = "contract_signed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// EstimateRequestedEvent published when a customer submits the estimate form
type EstimateRequestedEvent struct {
	BaseEvent
	EstimateRequestID int64  `json:"estimate_request_id"`
	CustomerName      string `json:"customer_name"`
	PropertyType      string `json:"property_type"`
}

// CatalogPriceUpdatedEvent published when an extracted item is promoted into the catalog
type CatalogPriceUpdatedEvent struct {
	BaseEvent
	StandardPriceID int64  `json:"standard_price_id"`
	ExtractedItemID int64  `json:"extracted_item_id"`
	Category        string `json:"category"`
	ProductName     string `json:"product_name"`
	UnitPrice       int64  `json:"unit_price"`
	Created         bool   `json:"created"`
}

// QuoteVersionSavedEvent published when a quote snapshot is taken
type QuoteVersionSavedEvent struct {
	BaseEvent
	QuoteID       int64  `json:"quote_id"`
	VersionID     int64  `json:"version_id"`
	VersionNumber int    `json:"version_number"`
	FinalAmount   int64  `json:"final_amount"`
	Reason        string `json:"reason"`
}

// ContractSignedEvent published after a contract transitions to signed
type ContractSignedEvent struct {
	BaseEvent
	ContractID     int64  `json:"contract_id"`
	ContractNumber string `json:"contract_number"`
	ContractAmount int64  `json:"contract_amount"`
}

// NotificationRequestedEvent asks the notification worker to dispatch an email
type NotificationRequestedEvent struct {
	BaseEvent
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient"`
	Data      map[string]string `json:"data"`
}
