package csv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortugueseHeaders(t *testing.T) {
	data := []byte(`Data;Loja;Produto;Código de Barras;Unidade;Quantidade;Preço Unitário;Valor Total
2026-01-10;Bom Preço;LEITE INTEGRAL 1L;7891000100103;un;2;4,99;9,98
2026-01-10;Bom Preço;BANANA PRATA KG;;kg;1,235;6,50;8,03
`)

	result, err := Parse(data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Empty(t, result.Errors)

	milk := result.Rows[0]
	assert.Equal(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), milk.PurchasedAt)
	assert.Equal(t, "Bom Preço", milk.StoreName)
	assert.Equal(t, "7891000100103", milk.Barcode)
	assert.InDelta(t, 2, milk.Quantity, 1e-9)
	assert.InDelta(t, 4.99, milk.UnitPrice, 1e-9)
	assert.InDelta(t, 9.98, milk.TotalPrice, 1e-9)
}

func TestParseEnglishHeadersCommaDelimited(t *testing.T) {
	data := []byte(`date,store,name,quantity,unit_price
10/01/2026,Mercado Central,Arroz Branco 5kg,1,"25.90"
`)

	result, err := Parse(data, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), row.PurchasedAt)
	// Total derived from quantity * unit price
	assert.InDelta(t, 25.90, row.TotalPrice, 1e-9)
}

func TestParseDerivesUnitPrice(t *testing.T) {
	data := []byte(`data;produto;quantidade;total
2026-02-01;Café Torrado 500g;2;31,80
`)

	result, err := Parse(data, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.InDelta(t, 15.90, result.Rows[0].UnitPrice, 1e-9)
}

func TestParseCollectsRowErrors(t *testing.T) {
	data := []byte(`data;produto;total
2026-02-01;Feijão Carioca;8,50
data-invalida;Macarrão;4,20
2026-02-03;;3,00
`)

	result, err := Parse(data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, 4, result.Errors[1].Line)
}

func TestParseLatin1File(t *testing.T) {
	// "data;produto;total\n2026-02-01;Pão Francês;1,20\n" in Latin-1
	data := []byte("data;produto;total\n2026-02-01;P\xe3o Franc\xeas;1,20\n")

	result, err := Parse(data, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Pão Francês", result.Rows[0].Name)
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse([]byte("foo;bar\n1;2\n"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no date column")
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected CsvDelimiter
	}{
		{"Semicolon", "a;b;c\n1;2;3\n", DelimiterSemicolon},
		{"Comma", "a,b,c\n1,2,3\n", DelimiterComma},
		{"Tab", "a\tb\tc\n1\t2\t3\n", DelimiterTab},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.content))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"12,99", 12.99, false},
		{"12.99", 12.99, false},
		{"R$ 1.299,00", 1299.00, false},
		{"1,299.00", 1299.00, false},
		{"8", 8, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, result, 1e-9)
		})
	}
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "12,99", FormatBRL(12.99))
	assert.Equal(t, "0,00", FormatBRL(0))
}
