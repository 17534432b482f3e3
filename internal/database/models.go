package database

import (
	"time"
)

// Family represents a household whose purchases are tracked together
type Family struct {
	ID        string    `json:"id"`         // UUID
	Name      string    `json:"name"`       // Display name
	Timezone  string    `json:"timezone"`   // IANA zone, e.g. America/Sao_Paulo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Purchase represents one imported receipt
type Purchase struct {
	ID          string    `json:"id"`           // UUID
	FamilyID    string    `json:"family_id"`    // FK to families.id
	AccessKey   *string   `json:"access_key"`   // 44-digit NFC-e key, nil for manual/CSV entries
	Source      string    `json:"source"`       // 'nfce', 'csv', 'manual'
	StoreName   string    `json:"store_name"`   // Trade name of the store
	StoreCNPJ   *string   `json:"store_cnpj"`   // Issuer CNPJ when known
	TotalAmount float64   `json:"total_amount"` // Receipt total in BRL
	PurchasedAt time.Time `json:"purchased_at"` // Emission timestamp
	ContentHash *string   `json:"content_hash"` // SHA256 of raw document, for deduplication
	CreatedAt   time.Time `json:"created_at"`
}

// PurchaseItem is one product line of a purchase
type PurchaseItem struct {
	ID             string    `json:"id"`              // UUID
	PurchaseID     string    `json:"purchase_id"`     // FK to purchases.id
	Code           *string   `json:"code"`            // Store-internal product code
	Barcode        *string   `json:"barcode"`         // Normalized GTIN, nil when the receipt carries none
	Name           string    `json:"name"`            // Product name as printed
	NormalizedName string    `json:"normalized_name"` // Lowercased, diacritics stripped
	Unit           *string   `json:"unit"`            // un, kg, l, ...
	Quantity       float64   `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalPrice     float64   `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShoppingList groups planned purchases for a family
type ShoppingList struct {
	ID        string    `json:"id"`        // UUID
	FamilyID  string    `json:"family_id"` // FK to families.id
	Name      string    `json:"name"`
	Status    string    `json:"status"` // 'open', 'done', 'archived'
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShoppingListEntry is one planned product on a list
type ShoppingListEntry struct {
	ID          string    `json:"id"`      // UUID
	ListID      string    `json:"list_id"` // FK to shopping_lists.id
	Barcode     *string   `json:"barcode"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Checked     bool      `json:"checked"`
	CheckedAt   *time.Time `json:"checked_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Budget caps spending for a family in a given month
type Budget struct {
	ID        string    `json:"id"`        // UUID
	FamilyID  string    `json:"family_id"` // FK to families.id
	MonthKey  string    `json:"month_key"` // YYYY-MM
	Amount    float64   `json:"amount"`    // Budget in BRL
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportRun tracks one import attempt (NFC-e fetch or CSV upload)
type ImportRun struct {
	ID           string     `json:"id"`        // UUID
	FamilyID     string     `json:"family_id"` // FK to families.id
	Source       string     `json:"source"`    // 'nfce', 'csv'
	Status       string     `json:"status"`    // 'pending', 'running', 'completed', 'failed'
	Reference    *string    `json:"reference"` // Access key or uploaded filename
	ItemCount    *int       `json:"item_count"`
	ErrorMessage *string    `json:"error_message"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ItemHistoryRow is a purchase item joined with its purchase metadata,
// the raw material for price series and insights
type ItemHistoryRow struct {
	ItemID      string    `json:"item_id"`
	Barcode     *string   `json:"barcode"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	StoreName   string    `json:"store_name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// MonthlySpendRow aggregates a family's spending for one month
type MonthlySpendRow struct {
	MonthKey   string  `json:"month_key"` // YYYY-MM
	TotalSpent float64 `json:"total_spent"`
	Purchases  int     `json:"purchases"`
}
