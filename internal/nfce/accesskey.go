// Package nfce handles NFC-e consumer fiscal receipts: access key
// validation, QR code URL parsing and document XML parsing.
package nfce

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// AccessKeyLength is the fixed length of an NFC-e access key.
const AccessKeyLength = 44

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// AccessKey is a validated 44-digit NFC-e access key.
type AccessKey string

// Fields decoded from the access key layout:
// cUF(2) AAMM(4) CNPJ(14) mod(2) serie(3) nNF(9) tpEmis(1) cNF(8) cDV(1).
type KeyFields struct {
	StateCode    string
	IssuePeriod  string // AAMM
	IssuerCNPJ   string
	Model        string
	Series       string
	Number       string
	EmissionType string
	Code         string
	CheckDigit   string
}

// ParseAccessKey normalizes and validates an access key. Separators and
// whitespace are stripped; the length and the mod-11 check digit must hold.
func ParseAccessKey(raw string) (AccessKey, error) {
	key := nonDigitRe.ReplaceAllString(raw, "")
	if len(key) != AccessKeyLength {
		return "", fmt.Errorf("access key must have %d digits, got %d", AccessKeyLength, len(key))
	}
	if !validateCheckDigit(key) {
		return "", fmt.Errorf("access key check digit mismatch")
	}
	return AccessKey(key), nil
}

// Fields splits the key into its positional fields.
func (k AccessKey) Fields() KeyFields {
	s := string(k)
	return KeyFields{
		StateCode:    s[0:2],
		IssuePeriod:  s[2:6],
		IssuerCNPJ:   s[6:20],
		Model:        s[20:22],
		Series:       s[22:25],
		Number:       s[25:34],
		EmissionType: s[34:35],
		Code:         s[35:43],
		CheckDigit:   s[43:44],
	}
}

func (k AccessKey) String() string {
	return string(k)
}

// validateCheckDigit verifies the mod-11 check digit over the first 43
// digits, weights cycling 2..9 from the rightmost digit.
func validateCheckDigit(key string) bool {
	sum := 0
	weight := 2
	for i := AccessKeyLength - 2; i >= 0; i-- {
		sum += int(key[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rem := sum % 11
	dv := 11 - rem
	if dv >= 10 {
		dv = 0
	}
	return int(key[AccessKeyLength-1]-'0') == dv
}

// ParseQRCodeURL extracts the access key from a consultation QR code URL.
// Newer portals carry it as the first segment of the pipe-separated "p"
// parameter; older ones use a chNFe parameter.
func ParseQRCodeURL(rawURL string) (AccessKey, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid QR code URL: %w", err)
	}

	query := u.Query()
	if p := query.Get("p"); p != "" {
		return ParseAccessKey(strings.SplitN(p, "|", 2)[0])
	}
	if ch := query.Get("chNFe"); ch != "" {
		return ParseAccessKey(ch)
	}

	return "", fmt.Errorf("QR code URL carries no access key")
}
