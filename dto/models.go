package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFood    Category = "Food & Entertainment"
	CategoryOffice  Category = "Office Supplies"
	CategoryTravel  Category = "Travel"
	CategoryUtility Category = "Utilities"
	CategoryGeneral Category = "General"
)

// StatusProcessed is the only record status this pipeline produces.
const StatusProcessed = "processed"

// UnknownVendor is the sentinel for text that matched no vendor group.
const UnknownVendor = "Unknown Vendor"

// UploadedDocument is the audit entry for a single uploaded invoice file.
// Confidence 0 means no real extraction happened (fallback data).
type UploadedDocument struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	SizeBytes       int64     `json:"size_bytes"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	ExtractedText   string    `json:"extracted_text,omitempty"`
	Confidence      float64   `json:"confidence"`
}

// ExpenseRecord is one structured expense derived from a document, or
// synthesized when acquisition failed. Records are append-only: no update
// or delete exists anywhere in the service.
type ExpenseRecord struct {
	ID                   string          `json:"id"`
	Vendor               string          `json:"vendor"`
	Amount               decimal.Decimal `json:"amount"`
	Category             Category        `json:"category"`
	Date                 string          `json:"date"` // YYYY-MM-DD
	InvoiceNumber        string          `json:"invoice_number"`
	PaymentMethod        string          `json:"payment_method"`
	Status               string          `json:"status"`
	SourceUploadID       string          `json:"source_upload_id,omitempty"`
	ExtractedTextSnippet string          `json:"extracted_text_snippet,omitempty"`
	Confidence           float64         `json:"confidence"`
}

// ExpenseSummary is the dashboard summary card payload.
type ExpenseSummary struct {
	Total              decimal.Decimal `json:"total"`
	ThisMonth          decimal.Decimal `json:"this_month"`
	TransactionCount   int             `json:"transaction_count"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	TopCategory        Category        `json:"top_category"`
}

// CategoryBreakdown is one slice of the category spend chart.
type CategoryBreakdown struct {
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int             `json:"percentage"`
}
