package priceseries

import (
	"sort"
	"strings"
	"time"
)

// MatchesProduct reports whether a line item belongs to the keyed product.
// A key with a barcode matches on exact barcode equality only; the name is
// ignored entirely. A key without a barcode matches on trimmed, lower-cased
// name equality, and never matches when either side lacks a name.
func MatchesProduct(item LineItem, key ProductKey) bool {
	if key.Barcode != "" {
		return item.Barcode == key.Barcode
	}
	if key.Name == "" || item.Name == "" {
		return false
	}
	return normalizeName(item.Name) == normalizeName(key.Name)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AggregateMonth filters items to the given calendar month and product, and
// aggregates them into one summary row. The average price is spend-weighted
// (total spend over total quantity); when matched items exist but their
// quantities sum to zero, it falls back to the arithmetic mean of the unit
// prices rather than reporting the month as empty.
func AggregateMonth(items []LineItem, key ProductKey, bucket MonthBucket) MonthAggregate {
	agg := MonthAggregate{
		Key:     bucket.Key,
		Label:   bucket.Label,
		Current: bucket.Current,
	}

	var totalSpent, priceSum float64
	var matched int
	for _, item := range items {
		if MonthKey(item.PurchaseDate) != bucket.Key || !MatchesProduct(item, key) {
			continue
		}
		matched++
		agg.TotalQty += item.Quantity
		totalSpent += item.TotalPrice
		priceSum += item.UnitPrice
	}

	if matched == 0 {
		return agg
	}

	agg.HasPurchase = true
	var avg float64
	if agg.TotalQty > 0 {
		avg = totalSpent / agg.TotalQty
	} else {
		// Zero-quantity records still carry a unit price.
		avg = priceSum / float64(matched)
	}
	agg.AvgPrice = &avg
	return agg
}

// SixMonthSummary aggregates the current month plus the five prior ones and
// drops months without a matched purchase. The result stays in
// chronological order and therefore has at most SummaryMonths entries.
func SixMonthSummary(items []LineItem, key ProductKey, ref time.Time, label LabelFunc) []MonthAggregate {
	summary := make([]MonthAggregate, 0, SummaryMonths)
	for _, bucket := range MonthWindow(ref, SummaryMonths, label) {
		agg := AggregateMonth(items, key, bucket)
		if agg.HasPurchase {
			summary = append(summary, agg)
		}
	}
	return summary
}

// SelectBaseline picks the current-month entry and its comparison baseline
// out of a summary. The baseline is the closest earlier month with data;
// when the summary has no current-month entry the most recent month serves
// as the baseline instead. The baseline is never the current month itself.
func SelectBaseline(summary []MonthAggregate) (current, baseline *MonthAggregate) {
	if len(summary) == 0 {
		return nil, nil
	}

	byRecency := make([]MonthAggregate, len(summary))
	copy(byRecency, summary)
	sort.Slice(byRecency, func(i, j int) bool {
		return byRecency[i].Key > byRecency[j].Key
	})

	currentIdx := -1
	for i := range byRecency {
		if byRecency[i].Current {
			currentIdx = i
			break
		}
	}

	if currentIdx == -1 {
		return nil, &byRecency[0]
	}

	current = &byRecency[currentIdx]
	if currentIdx+1 < len(byRecency) {
		baseline = &byRecency[currentIdx+1]
	}
	return current, baseline
}

// TwentyFourMonthSeries aggregates a SeriesMonths window keeping every
// month, with nil price and zero quantity for empty months, and fills the
// trend values by interpolating price and quantity gaps independently.
func TwentyFourMonthSeries(items []LineItem, key ProductKey, ref time.Time, label LabelFunc) []SeriesPoint {
	window := MonthWindow(ref, SeriesMonths, label)

	series := make([]SeriesPoint, len(window))
	prices := make([]*float64, len(window))
	qtys := make([]*float64, len(window))

	for i, bucket := range window {
		agg := AggregateMonth(items, key, bucket)
		series[i] = SeriesPoint{
			Key:      agg.Key,
			Label:    agg.Label,
			AvgPrice: agg.AvgPrice,
			TotalQty: agg.TotalQty,
			HasPrice: agg.AvgPrice != nil,
			HasQty:   agg.TotalQty > 0,
		}
		prices[i] = agg.AvgPrice
		if agg.HasPurchase {
			q := agg.TotalQty
			qtys[i] = &q
		}
	}

	trendPrices := InterpolateGaps(prices)
	trendQtys := InterpolateGaps(qtys)
	for i := range series {
		series[i].TrendPrice = trendPrices[i]
		series[i].TrendQty = trendQtys[i]
	}
	return series
}

// Compare runs the full comparison for one product: summary table, current
// and baseline months, trend series and the guarded price delta. A zero or
// missing baseline price yields no delta rather than a division by zero.
func Compare(items []LineItem, key ProductKey, ref time.Time, label LabelFunc) Comparison {
	cmp := Comparison{
		Summary: SixMonthSummary(items, key, ref, label),
		Series:  TwentyFourMonthSeries(items, key, ref, label),
	}
	cmp.Current, cmp.Baseline = SelectBaseline(cmp.Summary)

	if cmp.Current != nil && cmp.Baseline != nil &&
		cmp.Current.AvgPrice != nil && cmp.Baseline.AvgPrice != nil &&
		*cmp.Baseline.AvgPrice > 0 {
		delta := (*cmp.Current.AvgPrice - *cmp.Baseline.AvgPrice) / *cmp.Baseline.AvgPrice * 100
		cmp.PriceDeltaPct = &delta
	}
	return cmp
}
