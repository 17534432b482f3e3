// Package importer turns fetched NFC-e documents and uploaded CSV
// files into stored purchases.
package importer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/fetcher"
	"github.com/casalista/purchase-service/internal/matching"
	"github.com/casalista/purchase-service/internal/nfce"
	"github.com/casalista/purchase-service/internal/parsers/csv"
)

// ImportNFCeDocument parses raw NFC-e XML and stores it as a purchase.
// Returns the stored purchase and its item count.
func ImportNFCeDocument(ctx context.Context, familyID string, content []byte) (*database.Purchase, int, error) {
	doc, err := nfce.ParseDocument(content)
	if err != nil {
		return nil, 0, err
	}

	hash := fetcher.ComputeSha256(content)
	accessKey := doc.AccessKey.String()
	purchase := &database.Purchase{
		FamilyID:    familyID,
		AccessKey:   &accessKey,
		Source:      "nfce",
		StoreName:   doc.StoreName,
		TotalAmount: doc.TotalAmount,
		PurchasedAt: doc.IssuedAt,
		ContentHash: &hash,
	}
	if doc.StoreCNPJ != "" {
		cnpj := doc.StoreCNPJ
		purchase.StoreCNPJ = &cnpj
	}

	items := make([]database.PurchaseItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, database.PurchaseItem{
			Code:           optional(item.Code),
			Barcode:        optional(item.Barcode),
			Name:           item.Name,
			NormalizedName: matching.NormalizeProductName(item.Name),
			Unit:           optional(matching.NormalizeUnit(item.Unit, "")),
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		})
	}

	stored, err := database.CreatePurchase(ctx, purchase, items)
	if err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("family_id", familyID).
		Str("access_key", accessKey).
		Str("store", doc.StoreName).
		Int("items", len(items)).
		Msg("Imported NFC-e document")

	return stored, len(items), nil
}

// ImportCSV parses a purchase CSV export and stores its rows grouped by
// store and day, one purchase per group. Returns the number of stored
// items and the per-row errors.
func ImportCSV(ctx context.Context, familyID string, content []byte, opts csv.CsvParserOptions) (int, []csv.RowError, error) {
	result, err := csv.Parse(content, opts)
	if err != nil {
		return 0, nil, err
	}
	if result.ValidRows == 0 {
		return 0, result.Errors, fmt.Errorf("file has no usable rows")
	}

	type groupKey struct {
		store string
		day   string
	}
	groups := make(map[groupKey][]csv.PurchaseRow)
	for _, row := range result.Rows {
		key := groupKey{store: row.StoreName, day: row.PurchasedAt.Format("2006-01-02")}
		groups[key] = append(groups[key], row)
	}

	// Deterministic import order
	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].store < keys[j].store
	})

	imported := 0
	for _, key := range keys {
		rows := groups[key]

		storeName := key.store
		if storeName == "" {
			storeName = "Importação CSV"
		}

		var total float64
		var purchasedAt time.Time
		items := make([]database.PurchaseItem, 0, len(rows))
		for _, row := range rows {
			total += row.TotalPrice
			if purchasedAt.IsZero() || row.PurchasedAt.Before(purchasedAt) {
				purchasedAt = row.PurchasedAt
			}
			items = append(items, database.PurchaseItem{
				Barcode:        optional(row.Barcode),
				Name:           row.Name,
				NormalizedName: matching.NormalizeProductName(row.Name),
				Unit:           optional(row.Unit),
				Quantity:       row.Quantity,
				UnitPrice:      row.UnitPrice,
				TotalPrice:     row.TotalPrice,
			})
		}

		purchase := &database.Purchase{
			FamilyID:    familyID,
			Source:      "csv",
			StoreName:   storeName,
			TotalAmount: total,
			PurchasedAt: purchasedAt,
		}

		if _, err := database.CreatePurchase(ctx, purchase, items); err != nil {
			return imported, result.Errors, fmt.Errorf("store purchase for %s on %s: %w", storeName, key.day, err)
		}
		imported += len(items)
	}

	log.Info().
		Str("family_id", familyID).
		Int("purchases", len(groups)).
		Int("items", imported).
		Int("rejected_rows", len(result.Errors)).
		Msg("Imported CSV file")

	return imported, result.Errors, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
