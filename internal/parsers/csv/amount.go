package csv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var currencySuffixRe = regexp.MustCompile(`\s*(BRL|REAIS|REAL)\s*$`)

// ParseAmount parses a monetary or quantity value.
// Handles Brazilian and US formats: "12,99", "R$ 1.299,00", "12.99".
func ParseAmount(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}

	cleaned := strings.TrimSpace(value)
	cleaned = strings.Map(func(r rune) rune {
		if r == '$' || r == ' ' {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.TrimPrefix(strings.TrimSpace(cleaned), "R")
	cleaned = currencySuffixRe.ReplaceAllString(strings.ToUpper(cleaned), "")

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value found")
	}

	hasDigit := false
	for _, r := range cleaned {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return 0, fmt.Errorf("no digits found")
	}

	// Whichever separator comes last is the decimal separator
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	if lastComma > lastDot {
		// Brazilian format: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if lastDot > lastComma {
		// US format: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	result, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format %q: %w", value, err)
	}

	return result, nil
}

// FormatBRL formats an amount as a Brazilian decimal string
// (e.g. 12.99 -> "12,99")
func FormatBRL(amount float64) string {
	str := fmt.Sprintf("%.2f", amount)
	return strings.ReplaceAll(str, ".", ",")
}
