package nfce

import (
	"testing"
)

const (
	validKey  = "35260145543915000181650010000123451765432101"
	validKey2 = "35251245543915000181650010000111111123456789"
)

func TestParseAccessKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"Valid key", validKey, validKey, false},
		{"Second valid key", validKey2, validKey2, false},
		{"Strips separators", "3526 0145 5439 1500 0181 6500 1000 0123 4517 6543 2101", validKey, false},
		{"Strips NFe prefix digits only", "NFe" + validKey, validKey, false},
		{"Wrong check digit", validKey[:43] + "7", "", true},
		{"Too short", "123456", "", true},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseAccessKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAccessKey(%q) expected error, got %q", tt.input, key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAccessKey(%q) unexpected error: %v", tt.input, err)
			}
			if string(key) != tt.expected {
				t.Errorf("ParseAccessKey(%q) = %q, want %q", tt.input, key, tt.expected)
			}
		})
	}
}

func TestAccessKeyFields(t *testing.T) {
	key, err := ParseAccessKey(validKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := key.Fields()
	if fields.StateCode != "35" {
		t.Errorf("StateCode = %q, want 35", fields.StateCode)
	}
	if fields.IssuePeriod != "2601" {
		t.Errorf("IssuePeriod = %q, want 2601", fields.IssuePeriod)
	}
	if fields.IssuerCNPJ != "45543915000181" {
		t.Errorf("IssuerCNPJ = %q, want 45543915000181", fields.IssuerCNPJ)
	}
	if fields.Model != "65" {
		t.Errorf("Model = %q, want 65", fields.Model)
	}
	if fields.Number != "000012345" {
		t.Errorf("Number = %q, want 000012345", fields.Number)
	}
	if fields.CheckDigit != "1" {
		t.Errorf("CheckDigit = %q, want 1", fields.CheckDigit)
	}
}

func TestParseQRCodeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			"Pipe-separated p parameter",
			"https://www.nfce.fazenda.sp.gov.br/qrcode?p=" + validKey + "|2|1|1|ABCDEF0123456789",
			validKey,
			false,
		},
		{
			"Bare p parameter",
			"https://www.nfce.fazenda.sp.gov.br/qrcode?p=" + validKey,
			validKey,
			false,
		},
		{
			"Legacy chNFe parameter",
			"https://nfce.fazenda.rj.gov.br/consulta?chNFe=" + validKey2 + "&nVersao=100",
			validKey2,
			false,
		},
		{
			"No key parameter",
			"https://www.nfce.fazenda.sp.gov.br/qrcode?x=1",
			"",
			true,
		},
		{
			"Invalid key in parameter",
			"https://www.nfce.fazenda.sp.gov.br/qrcode?p=1234|2|1",
			"",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseQRCodeURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseQRCodeURL(%q) expected error, got %q", tt.url, key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQRCodeURL(%q) unexpected error: %v", tt.url, err)
			}
			if string(key) != tt.want {
				t.Errorf("ParseQRCodeURL(%q) = %q, want %q", tt.url, key, tt.want)
			}
		})
	}
}
