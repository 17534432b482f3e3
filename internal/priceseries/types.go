// Package priceseries builds month-bucketed price history for a single
// product out of a family's purchase line items. All functions are pure:
// the reference time is passed in explicitly and every call recomputes
// from scratch.
package priceseries

import "time"

// LineItem is one product row of a recorded purchase (one receipt line).
// Name and Barcode are optional; empty string means absent. Missing
// numeric fields are treated as zero by the aggregation.
type LineItem struct {
	ID           string
	Name         string
	Barcode      string
	Quantity     float64
	UnitPrice    float64
	TotalPrice   float64
	PurchaseDate time.Time
	StoreName    string
}

// ProductKey identifies the product whose purchase history is aggregated.
// When Barcode is set it is the only matching criterion; Name is used
// only when Barcode is empty.
type ProductKey struct {
	Barcode string
	Name    string
}

// LabelFunc renders a display label for the first day of a month.
// Locale-aware formatting is the caller's concern; the core only needs
// a stable YYYY-MM key plus an opaque label.
type LabelFunc func(time.Time) string

// DefaultLabel formats months as "Jan/06".
func DefaultLabel(t time.Time) string {
	return t.Format("Jan/06")
}

// MonthBucket is one calendar month of an aggregation window.
type MonthBucket struct {
	Key     string // YYYY-MM
	Label   string
	Current bool // month containing the reference time
}

// MonthAggregate is one row of the comparison summary.
type MonthAggregate struct {
	Key         string
	Label       string
	Current     bool
	AvgPrice    *float64 // nil when no matched purchase in the month
	TotalQty    float64
	HasPurchase bool
}

// SeriesPoint is one month of the long-window trend series. AvgPrice and
// TotalQty are raw values; TrendPrice and TrendQty are the gap-filled
// values for the secondary trend line.
type SeriesPoint struct {
	Key        string
	Label      string
	AvgPrice   *float64
	TotalQty   float64
	HasPrice   bool
	HasQty     bool
	TrendPrice *float64
	TrendQty   *float64
}

// Comparison bundles everything the comparison view needs for one product.
type Comparison struct {
	Summary       []MonthAggregate
	Current       *MonthAggregate
	Baseline      *MonthAggregate
	Series        []SeriesPoint
	PriceDeltaPct *float64 // nil when there is no usable baseline
}
