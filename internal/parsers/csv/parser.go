// Package csv parses purchase history CSV files. Files come from
// spreadsheet exports, so delimiter, encoding and header names vary.
package csv

import (
	enccsv "encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/casalista/purchase-service/internal/matching"
	"github.com/casalista/purchase-service/internal/parsers/charset"
)

// Header aliases per field, normalized (lowercase, no diacritics,
// underscores for spaces). Portuguese first since that is what the
// exports usually carry.
var headerAliases = map[string][]string{
	"date":       {"data", "data_compra", "date", "dia"},
	"store":      {"loja", "mercado", "estabelecimento", "store"},
	"name":       {"produto", "nome", "descricao", "item", "name"},
	"barcode":    {"codigo_de_barras", "codigo_barras", "barcode", "ean", "gtin"},
	"unit":       {"unidade", "unid", "unit"},
	"quantity":   {"quantidade", "qtd", "qtde", "quantity"},
	"unit_price": {"preco_unitario", "valor_unitario", "preco", "unit_price"},
	"total":      {"valor_total", "total", "valor", "total_price"},
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Parse parses a purchase CSV file. Rows that cannot be parsed are
// collected in the result's Errors instead of failing the whole file.
func Parse(data []byte, opts CsvParserOptions) (*ParseResult, error) {
	enc := opts.Encoding
	if enc == "" {
		enc = charset.DetectEncoding(data)
	}
	content, err := charset.Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}

	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = DetectDelimiter(content)
	}

	reader := enccsv.NewReader(strings.NewReader(content))
	reader.Comma = rune(delimiter[0])
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if !opts.HasHeader {
		return nil, fmt.Errorf("headerless files are not supported")
	}

	columns, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Rows:   make([]PurchaseRow, 0, len(records)-1),
		Errors: make([]RowError, 0),
	}

	for i, record := range records[1:] {
		line := i + 2 // 1-based, after header

		if opts.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}
		result.TotalRows++

		row, err := parseRow(record, columns, line, opts.DefaultStore)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		result.Rows = append(result.Rows, *row)
		result.ValidRows++
	}

	return result, nil
}

// resolveColumns maps field names to column indices via header aliases.
// Date and product name are mandatory.
func resolveColumns(header []string) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	columns := make(map[string]int)
	for field, aliases := range headerAliases {
		for _, alias := range aliases {
			for i, h := range normalized {
				if h == alias {
					columns[field] = i
					break
				}
			}
			if _, ok := columns[field]; ok {
				break
			}
		}
	}

	if _, ok := columns["date"]; !ok {
		return nil, fmt.Errorf("no date column found in header %v", header)
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("no product name column found in header %v", header)
	}

	return columns, nil
}

func parseRow(record []string, columns map[string]int, line int, defaultStore string) (*PurchaseRow, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	purchasedAt, err := parseDate(field("date"))
	if err != nil {
		return nil, err
	}

	name := field("name")
	if name == "" {
		return nil, fmt.Errorf("empty product name")
	}

	row := &PurchaseRow{
		Line:        line,
		PurchasedAt: purchasedAt,
		StoreName:   field("store"),
		Name:        name,
		Barcode:     matching.NormalizeBarcode(field("barcode")),
		Unit:        strings.ToLower(field("unit")),
	}
	if row.StoreName == "" {
		row.StoreName = defaultStore
	}

	if v := field("quantity"); v != "" {
		row.Quantity, err = ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
	}
	if v := field("unit_price"); v != "" {
		row.UnitPrice, err = ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("unit price: %w", err)
		}
	}
	if v := field("total"); v != "" {
		row.TotalPrice, err = ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("total: %w", err)
		}
	}

	// Derive what is missing
	if row.Quantity == 0 && row.UnitPrice > 0 && row.TotalPrice > 0 {
		row.Quantity = row.TotalPrice / row.UnitPrice
	}
	if row.Quantity == 0 {
		row.Quantity = 1
	}
	if row.TotalPrice == 0 && row.UnitPrice > 0 {
		row.TotalPrice = row.UnitPrice * row.Quantity
	}
	if row.UnitPrice == 0 && row.TotalPrice > 0 {
		row.UnitPrice = row.TotalPrice / row.Quantity
	}
	if row.TotalPrice == 0 && row.UnitPrice == 0 {
		return nil, fmt.Errorf("row has no price information")
	}

	return row, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}

func normalizeHeader(h string) string {
	h = matching.RemoveDiacritics(strings.TrimSpace(h))
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

func isEmptyRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
