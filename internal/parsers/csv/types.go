package csv

import (
	"time"

	"github.com/casalista/purchase-service/internal/parsers/charset"
)

// CsvDelimiter represents supported CSV delimiters
type CsvDelimiter string

const (
	DelimiterComma     CsvDelimiter = ","
	DelimiterSemicolon CsvDelimiter = ";"
	DelimiterTab       CsvDelimiter = "\t"
)

// CsvParserOptions represents CSV parser options
type CsvParserOptions struct {
	Delimiter     CsvDelimiter     `json:"delimiter,omitempty"`
	Encoding      charset.Encoding `json:"encoding,omitempty"`
	HasHeader     bool             `json:"hasHeader,omitempty"`
	SkipEmptyRows bool             `json:"skipEmptyRows,omitempty"`
	// DefaultStore is used when the file carries no store column
	DefaultStore string `json:"defaultStore,omitempty"`
}

// DefaultOptions returns default CSV parser options. Delimiter and
// encoding are auto-detected when left empty.
func DefaultOptions() CsvParserOptions {
	return CsvParserOptions{
		HasHeader:     true,
		SkipEmptyRows: true,
	}
}

// PurchaseRow is one parsed purchase line from a CSV file
type PurchaseRow struct {
	Line        int       `json:"line"`
	PurchasedAt time.Time `json:"purchasedAt"`
	StoreName   string    `json:"storeName"`
	Name        string    `json:"name"`
	Barcode     string    `json:"barcode"`
	Unit        string    `json:"unit"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
}

// RowError records why a row was rejected
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseResult holds the outcome of parsing one file
type ParseResult struct {
	Rows      []PurchaseRow `json:"rows"`
	TotalRows int           `json:"totalRows"`
	ValidRows int           `json:"validRows"`
	Errors    []RowError    `json:"errors"`
}
