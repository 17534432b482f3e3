// Package matching normalizes product identifiers coming out of imported
// receipts so that the same product is recognized across stores and
// import sources.
package matching

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonDigitRe       = regexp.MustCompile(`[^0-9]`)
	placeholderRe    = regexp.MustCompile(`^0+$`)
	variableWeightRe = regexp.MustCompile(`^2[0-9]`) // EAN-13 prefix 20-29
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// NormalizeBarcode cleans a scanned or imported barcode: strips non-digits,
// pads UPC-A to EAN-13, rejects placeholder and variable-weight codes and
// validates the EAN-13 check digit. Returns empty string for codes that
// must not be used as a product identity.
func NormalizeBarcode(barcode string) string {
	bc := nonDigitRe.ReplaceAllString(barcode, "")
	if bc == "" {
		return ""
	}

	// All-zero placeholders show up on receipts for weighed produce.
	if placeholderRe.MatchString(bc) {
		return ""
	}

	// Variable-weight in-store codes are store-local, never a product.
	if len(bc) == 13 && variableWeightRe.MatchString(bc) {
		return ""
	}

	// UPC-A (12 digits) -> EAN-13
	if len(bc) == 12 {
		bc = "0" + bc
	}

	if len(bc) != 13 {
		// Internal store codes pass through untouched; they still match
		// within one store's receipts.
		return bc
	}

	if !validateEAN13CheckDigit(bc) {
		return ""
	}

	return bc
}

func validateEAN13CheckDigit(bc string) bool {
	if len(bc) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(bc[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return int(bc[12]-'0') == (10-(sum%10))%10
}

// RemoveDiacritics folds accented characters to their base letter.
// Receipt OCR and fiscal documents are inconsistent about accents in
// Portuguese product names (açúcar vs acucar, feijão vs feijao).
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeProductName produces the canonical form used for name-based
// product grouping: diacritics stripped, lower-cased, whitespace collapsed.
func NormalizeProductName(name string) string {
	s := RemoveDiacritics(name)
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

// NormalizeUnit converts receipt unit strings to a canonical form so that
// quantities can be compared across stores ("1kg", "500ml", "6un").
func NormalizeUnit(unit, quantity string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	q := strings.TrimSpace(quantity)

	conversions := map[string]string{
		"l":    "l",
		"lt":   "l",
		"ltr":  "l",
		"ml":   "ml",
		"kg":   "kg",
		"g":    "g",
		"gr":   "g",
		"un":   "un",
		"und":  "un",
		"unid": "un",
		"pc":   "un",
		"pct":  "un",
	}
	if canonical, ok := conversions[u]; ok {
		u = canonical
	}

	// 1000ml -> 1l, 1000g -> 1kg
	if u == "ml" && q != "" {
		if val, err := strconv.ParseFloat(q, 64); err == nil && val >= 1000 {
			return strconv.FormatFloat(val/1000, 'f', -1, 64) + "l"
		}
	}
	if u == "g" && q != "" {
		if val, err := strconv.ParseFloat(q, 64); err == nil && val >= 1000 {
			return strconv.FormatFloat(val/1000, 'f', -1, 64) + "kg"
		}
	}

	if q != "" {
		return q + u
	}
	return u
}
