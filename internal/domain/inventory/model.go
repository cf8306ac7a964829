package inventory

import (
	"time"
)

// -- Master data --

// Supply maps to master_supplies. Inactive supplies are soft deleted.
type Supply struct {
	ID                int64     `db:"id" json:"id"`
	TenantID          string    `db:"tenant_id" json:"tenant_id"`
	Code              string    `db:"code" json:"code"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	Category          *string   `db:"category" json:"category,omitempty"`
	UnitMeasure       *string   `db:"unit_measure" json:"unit_measure,omitempty"`
	Presentation      *string   `db:"presentation" json:"presentation,omitempty"`
	UnitCost          float64   `db:"unit_cost" json:"unit_cost"`
	SalePrice         float64   `db:"sale_price" json:"sale_price"`
	MinStock          float64   `db:"min_stock" json:"min_stock"`
	MaxStock          float64   `db:"max_stock" json:"max_stock"`
	MainSupplier      *int64    `db:"main_supplier" json:"main_supplier,omitempty"`
	WarehouseLocation *string   `db:"warehouse_location" json:"warehouse_location,omitempty"`
	Status            bool      `db:"status" json:"status"`
	CreatedBy         *string   `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy         *string   `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type SupplyInput struct {
	Code              *string  `json:"code" validate:"omitempty,min=1,max=50"`
	Name              *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category" validate:"omitempty,max=100"`
	UnitMeasure       *string  `json:"unit_measure" validate:"omitempty,max=50"`
	Presentation      *string  `json:"presentation" validate:"omitempty,max=100"`
	UnitCost          *float64 `json:"unit_cost" validate:"omitempty,gte=0"`
	SalePrice         *float64 `json:"sale_price" validate:"omitempty,gte=0"`
	MinStock          *float64 `json:"min_stock" validate:"omitempty,gte=0"`
	MaxStock          *float64 `json:"max_stock" validate:"omitempty,gte=0"`
	MainSupplier      *int64   `json:"main_supplier" validate:"omitempty,gt=0"`
	WarehouseLocation *string  `json:"warehouse_location" validate:"omitempty,max=100"`
}

// Supplier maps to suppliers. Inactive suppliers are soft deleted.
type Supplier struct {
	ID           int64     `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	BusinessName *string   `db:"business_name" json:"business_name,omitempty"`
	TaxID        *string   `db:"tax_id" json:"tax_id,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	MainContact  *string   `db:"main_contact" json:"main_contact,omitempty"`
	Status       bool      `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type SupplierInput struct {
	Code         *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	BusinessName *string `json:"business_name" validate:"omitempty,max=200"`
	TaxID        *string `json:"tax_id" validate:"omitempty,max=50"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MainContact  *string `json:"main_contact" validate:"omitempty,max=200"`
}

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Unit struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Abbreviation *string `json:"abbreviation,omitempty"`
}

// -- Postings --

// IncomingTransaction is a goods receipt. Dates travel as YYYY-MM-DD.
type IncomingTransaction struct {
	ID                int64            `json:"id"`
	TenantID          string           `json:"tenant_id"`
	TransactionNumber string           `json:"transaction_number"`
	TransactionDate   string           `json:"transaction_date"`
	SupplierID        *int64           `json:"supplier_id,omitempty"`
	SupplierName      *string          `json:"supplier_name,omitempty"`
	SupplierCode      *string          `json:"supplier_code,omitempty"`
	InvoiceNumber     *string          `json:"invoice_number,omitempty"`
	TransactionType   string           `json:"transaction_type"`
	Subtotal          float64          `json:"subtotal"`
	TaxAmount         float64          `json:"tax_amount"`
	Total             float64          `json:"total"`
	Notes             *string          `json:"notes,omitempty"`
	CreatedBy         *string          `json:"created_by,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	Details           []IncomingDetail `json:"details,omitempty"`
}

type IncomingDetail struct {
	ID                int64   `json:"id"`
	IncomingID        int64   `json:"incoming_id"`
	SupplyID          int64   `json:"supply_id"`
	SupplyCode        string  `json:"supply_code,omitempty"`
	SupplyName        string  `json:"supply_name,omitempty"`
	Quantity          float64 `json:"quantity"`
	UnitCost          float64 `json:"unit_cost"`
	Subtotal          float64 `json:"subtotal"`
	BatchNumber       *string `json:"batch_number,omitempty"`
	ExpirationDate    *string `json:"expiration_date,omitempty"`
	WarehouseLocation *string `json:"warehouse_location,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

type IncomingInput struct {
	TransactionNumber *string               `json:"transaction_number" validate:"omitempty,max=50"`
	TransactionDate   *string               `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	SupplierID        *int64                `json:"supplier_id" validate:"omitempty,gt=0"`
	InvoiceNumber     *string               `json:"invoice_number" validate:"omitempty,max=50"`
	TransactionType   *string               `json:"transaction_type" validate:"omitempty,max=50"`
	Subtotal          *float64              `json:"subtotal" validate:"omitempty,gte=0"`
	TaxAmount         *float64              `json:"tax_amount" validate:"omitempty,gte=0"`
	Total             *float64              `json:"total" validate:"omitempty,gte=0"`
	Notes             *string               `json:"notes"`
	Details           []IncomingDetailInput `json:"details" validate:"required,min=1,dive"`
}

type IncomingDetailInput struct {
	SupplyID          int64    `json:"supply_id" validate:"required,gt=0"`
	Quantity          float64  `json:"quantity" validate:"required,gt=0"`
	UnitCost          float64  `json:"unit_cost" validate:"gte=0"`
	Subtotal          *float64 `json:"subtotal" validate:"omitempty,gte=0"`
	BatchNumber       *string  `json:"batch_number" validate:"omitempty,max=50"`
	ExpirationDate    *string  `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
	WarehouseLocation *string  `json:"warehouse_location" validate:"omitempty,max=100"`
	Notes             *string  `json:"notes"`
}

// OutgoingTransaction is a consumption or sale of stock.
type OutgoingTransaction struct {
	ID                int64            `json:"id"`
	TenantID          string           `json:"tenant_id"`
	TransactionNumber string           `json:"transaction_number"`
	TransactionDate   string           `json:"transaction_date"`
	TransactionType   string           `json:"transaction_type"`
	PatientID         *int64           `json:"patient_id,omitempty"`
	PatientName       *string          `json:"patient_name,omitempty"`
	DentistID         *int64           `json:"dentist_id,omitempty"`
	DentistName       *string          `json:"dentist_name,omitempty"`
	Reason            *string          `json:"reason,omitempty"`
	Total             float64          `json:"total"`
	CreatedBy         *string          `json:"created_by,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	Details           []OutgoingDetail `json:"details,omitempty"`
}

type OutgoingDetail struct {
	ID          int64   `json:"id"`
	OutgoingID  int64   `json:"outgoing_id"`
	SupplyID    int64   `json:"supply_id"`
	SupplyCode  string  `json:"supply_code,omitempty"`
	SupplyName  string  `json:"supply_name,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	Subtotal    float64 `json:"subtotal"`
	BatchNumber *string `json:"batch_number,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type OutgoingInput struct {
	TransactionNumber *string               `json:"transaction_number" validate:"omitempty,max=50"`
	TransactionDate   *string               `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	TransactionType   *string               `json:"transaction_type" validate:"omitempty,max=50"`
	PatientID         *int64                `json:"patient_id" validate:"omitempty,gt=0"`
	DentistID         *int64                `json:"dentist_id" validate:"omitempty,gt=0"`
	Reason            *string               `json:"reason"`
	Total             *float64              `json:"total" validate:"omitempty,gte=0"`
	Details           []OutgoingDetailInput `json:"details" validate:"required,min=1,dive"`
}

type OutgoingDetailInput struct {
	SupplyID    int64    `json:"supply_id" validate:"required,gt=0"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	UnitCost    float64  `json:"unit_cost" validate:"gte=0"`
	Subtotal    *float64 `json:"subtotal" validate:"omitempty,gte=0"`
	BatchNumber *string  `json:"batch_number" validate:"omitempty,max=50"`
	Notes       *string  `json:"notes"`
}

// -- Stock views --

// StockLevel is one row of current_stock_view or low_stock_view.
type StockLevel struct {
	SupplyID     int64   `json:"supply_id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Category     *string `json:"category,omitempty"`
	UnitMeasure  *string `json:"unit_measure,omitempty"`
	MinStock     float64 `json:"min_stock"`
	MaxStock     float64 `json:"max_stock"`
	CurrentStock float64 `json:"current_stock"`
}

// BatchStock is the remaining quantity of one batch of a supply.
type BatchStock struct {
	SupplyID          int64   `json:"supply_id"`
	BatchNumber       *string `json:"batch_number,omitempty"`
	ExpirationDate    *string `json:"expiration_date,omitempty"`
	WarehouseLocation *string `json:"warehouse_location,omitempty"`
	Quantity          float64 `json:"quantity"`
}

type Movement struct {
	MovementType      string  `json:"movement_type"`
	TransactionID     int64   `json:"transaction_id"`
	TransactionNumber string  `json:"transaction_number"`
	MovementDate      string  `json:"movement_date"`
	SupplyID          int64   `json:"supply_id"`
	SupplyCode        string  `json:"supply_code"`
	SupplyName        string  `json:"supply_name"`
	Quantity          float64 `json:"quantity"`
	UnitCost          float64 `json:"unit_cost"`
	BatchNumber       *string `json:"batch_number,omitempty"`
}
