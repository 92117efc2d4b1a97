package models

import "time"

// EstimateRequest is a customer lead submitted from the estimate form
type EstimateRequest struct {
	ID              int64     `db:"id" json:"id"`
	CustomerName    string    `db:"customer_name" json:"customer_name"`
	CustomerPhone   string    `db:"customer_phone" json:"customer_phone"`
	CustomerEmail   string    `db:"customer_email" json:"customer_email"`
	PropertyType    string    `db:"property_type" json:"property_type"`
	PropertySize    *float64  `db:"property_size" json:"property_size,omitempty"`
	PropertyAddress string    `db:"property_address" json:"property_address"`
	Budget          string    `db:"budget" json:"budget"`
	Schedule        string    `db:"schedule" json:"schedule"`
	Message         string    `db:"message" json:"message"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ExtractedItem is a line item pulled out of an uploaded estimate document.
// It is not trusted as a pricing source until promoted.
type ExtractedItem struct {
	ID             int64     `db:"id" json:"id"`
	Category       string    `db:"category" json:"category"`
	SubCategory    string    `db:"sub_category" json:"sub_category"`
	DetailCategory string    `db:"detail_category" json:"detail_category"`
	CanonicalName  string    `db:"canonical_name" json:"canonical_name"`
	OriginalName   string    `db:"original_name" json:"original_name"`
	Brand          string    `db:"brand" json:"brand"`
	ProductGrade   string    `db:"product_grade" json:"product_grade"`
	Unit           string    `db:"unit" json:"unit"`
	Quantity       *float64  `db:"quantity" json:"quantity"`
	UnitPrice      *int64    `db:"unit_price" json:"unit_price"`
	TotalPrice     *int64    `db:"total_price" json:"total_price"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StandardPrice is a trusted catalog unit price keyed by (category, product name)
type StandardPrice struct {
	ID             int64     `db:"id" json:"id"`
	PriceType      string    `db:"price_type" json:"price_type"`
	Category       string    `db:"category" json:"category"`
	SubCategory    string    `db:"sub_category" json:"sub_category"`
	DetailCategory string    `db:"detail_category" json:"detail_category"`
	ProductName    string    `db:"product_name" json:"product_name"`
	Brand          string    `db:"brand" json:"brand"`
	ProductGrade   string    `db:"product_grade" json:"product_grade"`
	Unit           string    `db:"unit" json:"unit"`
	UnitPrice      int64     `db:"unit_price" json:"unit_price"`
	Source         string    `db:"source" json:"source"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	PriceDate      time.Time `db:"price_date" json:"price_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Quote is a customer-facing estimate document
type Quote struct {
	ID                int64      `db:"id" json:"id"`
	QuoteNumber       string     `db:"quote_number" json:"quote_number"`
	EstimateRequestID *int64     `db:"estimate_request_id" json:"estimate_request_id,omitempty"`
	CustomerName      string     `db:"customer_name" json:"customer_name"`
	CustomerPhone     string     `db:"customer_phone" json:"customer_phone"`
	CustomerEmail     string     `db:"customer_email" json:"customer_email"`
	PropertyAddress   string     `db:"property_address" json:"property_address"`
	PropertyType      string     `db:"property_type" json:"property_type"`
	PropertySize      *float64   `db:"property_size" json:"property_size,omitempty"`
	Status            string     `db:"status" json:"status"`
	LaborCost         int64      `db:"labor_cost" json:"labor_cost"`
	MaterialCost      int64      `db:"material_cost" json:"material_cost"`
	OtherCost         int64      `db:"other_cost" json:"other_cost"`
	Discount          int64      `db:"discount" json:"discount"`
	VAT               int64      `db:"vat" json:"vat"`
	FinalAmount       int64      `db:"final_amount" json:"final_amount"`
	Notes             string     `db:"notes" json:"notes"`
	ValidUntil        *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	LastVersionNumber int        `db:"last_version_number" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	Items []QuoteItem `db:"-" json:"items,omitempty"`
}

// QuoteItem is a line of a quote
type QuoteItem struct {
	ID              int64    `db:"id" json:"id"`
	QuoteID         int64    `db:"quote_id" json:"quote_id"`
	Category        string   `db:"category" json:"category"`
	ItemName        string   `db:"item_name" json:"item_name"`
	Quantity        float64  `db:"quantity" json:"quantity"`
	Unit            string   `db:"unit" json:"unit"`
	UnitPrice       int64    `db:"unit_price" json:"unit_price"`
	TotalPrice      int64    `db:"total_price" json:"total_price"`
	CostType        string   `db:"cost_type" json:"cost_type"`
	LaborRatio      *float64 `db:"labor_ratio" json:"labor_ratio,omitempty"`
	SortOrder       int      `db:"sort_order" json:"sort_order"`
	IsOptional      bool     `db:"is_optional" json:"is_optional"`
	IsIncluded      bool     `db:"is_included" json:"is_included"`
	StandardPriceID *int64   `db:"standard_price_id" json:"standard_price_id,omitempty"`
	Note            string   `db:"note" json:"note"`
}

// QuoteVersion is an immutable snapshot of a quote
type QuoteVersion struct {
	ID              int64     `db:"id" json:"id"`
	QuoteID         int64     `db:"quote_id" json:"quote_id"`
	VersionNumber   int       `db:"version_number" json:"version_number"`
	QuoteNumber     string    `db:"quote_number" json:"quote_number"`
	CustomerName    string    `db:"customer_name" json:"customer_name"`
	CustomerPhone   string    `db:"customer_phone" json:"customer_phone"`
	CustomerEmail   string    `db:"customer_email" json:"customer_email"`
	PropertyAddress string    `db:"property_address" json:"property_address"`
	PropertyType    string    `db:"property_type" json:"property_type"`
	PropertySize    *float64  `db:"property_size" json:"property_size,omitempty"`
	Status          string    `db:"status" json:"status"`
	LaborCost       int64     `db:"labor_cost" json:"labor_cost"`
	MaterialCost    int64     `db:"material_cost" json:"material_cost"`
	OtherCost       int64     `db:"other_cost" json:"other_cost"`
	Discount        int64     `db:"discount" json:"discount"`
	VAT             int64     `db:"vat" json:"vat"`
	FinalAmount     int64     `db:"final_amount" json:"final_amount"`
	Notes           string    `db:"notes" json:"notes"`
	SavedReason     string    `db:"saved_reason" json:"saved_reason"`
	SavedAt         time.Time `db:"saved_at" json:"saved_at"`

	Items []QuoteVersionItem `db:"-" json:"items,omitempty"`
}

// QuoteVersionItem is a copied quote line owned by one version.
// It deliberately has no reference to the live QuoteItem.
type QuoteVersionItem struct {
	ID         int64    `db:"id" json:"id"`
	VersionID  int64    `db:"version_id" json:"version_id"`
	Category   string   `db:"category" json:"category"`
	ItemName   string   `db:"item_name" json:"item_name"`
	Quantity   float64  `db:"quantity" json:"quantity"`
	Unit       string   `db:"unit" json:"unit"`
	UnitPrice  int64    `db:"unit_price" json:"unit_price"`
	TotalPrice int64    `db:"total_price" json:"total_price"`
	CostType   string   `db:"cost_type" json:"cost_type"`
	LaborRatio *float64 `db:"labor_ratio" json:"labor_ratio,omitempty"`
	SortOrder  int      `db:"sort_order" json:"sort_order"`
	IsOptional bool     `db:"is_optional" json:"is_optional"`
	IsIncluded bool     `db:"is_included" json:"is_included"`
	Note       string   `db:"note" json:"note"`
}

// PaymentSchedule is the four-stage payment plan of a contract
type PaymentSchedule struct {
	DepositAmount        int64      `db:"deposit_amount" json:"deposit_amount"`
	DepositDueDate       *time.Time `db:"deposit_due_date" json:"deposit_due_date,omitempty"`
	FirstPaymentAmount   int64      `db:"first_payment_amount" json:"first_payment_amount"`
	FirstPaymentDueDate  *time.Time `db:"first_payment_due_date" json:"first_payment_due_date,omitempty"`
	SecondPaymentAmount  int64      `db:"second_payment_amount" json:"second_payment_amount"`
	SecondPaymentDueDate *time.Time `db:"second_payment_due_date" json:"second_payment_due_date,omitempty"`
	FinalPaymentAmount   int64      `db:"final_payment_amount" json:"final_payment_amount"`
	FinalPaymentDueDate  *time.Time `db:"final_payment_due_date" json:"final_payment_due_date,omitempty"`
}

// Contract is a legal agreement signed by the customer
type Contract struct {
	ID              int64      `db:"id" json:"id"`
	ContractNumber  string     `db:"contract_number" json:"contract_number"`
	QuoteID         *int64     `db:"quote_id" json:"quote_id,omitempty"`
	CustomerName    string     `db:"customer_name" json:"customer_name"`
	CustomerPhone   string     `db:"customer_phone" json:"customer_phone"`
	CustomerEmail   string     `db:"customer_email" json:"customer_email"`
	PropertyAddress string     `db:"property_address" json:"property_address"`
	ContractAmount  int64      `db:"contract_amount" json:"contract_amount"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status          string     `db:"status" json:"status"`
	SignatureURL    string     `db:"signature_url" json:"signature_url,omitempty"`
	SignedAt        *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	PaymentSchedule
}

// ContractVersion is an immutable snapshot of a contract
type ContractVersion struct {
	ID              int64      `db:"id" json:"id"`
	ContractID      int64      `db:"contract_id" json:"contract_id"`
	VersionNumber   int        `db:"version_number" json:"version_number"`
	ContractNumber  string     `db:"contract_number" json:"contract_number"`
	CustomerName    string     `db:"customer_name" json:"customer_name"`
	CustomerPhone   string     `db:"customer_phone" json:"customer_phone"`
	CustomerEmail   string     `db:"customer_email" json:"customer_email"`
	PropertyAddress string     `db:"property_address" json:"property_address"`
	ContractAmount  int64      `db:"contract_amount" json:"contract_amount"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status          string     `db:"status" json:"status"`
	SignatureURL    string     `db:"signature_url" json:"signature_url,omitempty"`
	SignedAt        *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	SavedReason     string     `db:"saved_reason" json:"saved_reason"`
	SavedAt         time.Time  `db:"saved_at" json:"saved_at"`

	PaymentSchedule
}

// Estimate request statuses
const (
	EstimateStatusPending   = "pending"
	EstimateStatusReviewing = "reviewing"
	EstimateStatusQuoted    = "quoted"
	EstimateStatusClosed    = "closed"
)

// Quote statuses
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// Contract statuses
const (
	ContractStatusPending   = "pending"
	ContractStatusSigned    = "signed"
	ContractStatusCancelled = "cancelled"
)

// Catalog price types
const (
	PriceTypeMaterial  = "material"
	PriceTypeLabor     = "labor"
	PriceTypeComposite = "composite"
)

// Quote item cost types
const (
	CostTypeMaterial  = "material"
	CostTypeLabor     = "labor"
	CostTypeComposite = "composite"
	CostTypeOther     = "other"
)
