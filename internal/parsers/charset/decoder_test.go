package charset

import (
	"testing"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Encoding
	}{
		{"UTF-8 BOM", []byte{0xEF, 0xBB, 0xBF, 'a'}, EncodingUTF8},
		{"Plain ASCII", []byte("acucar cristal"), EncodingUTF8},
		{"UTF-8 with accents", []byte("açúcar"), EncodingUTF8},
		{"Latin-1 accents", []byte{'a', 0xE7, 0xFA, 'c', 'a', 'r'}, EncodingWindows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectEncoding(tt.data)
			if result != tt.expected {
				t.Errorf("DetectEncoding(%v) = %s, want %s", tt.data, result, tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		enc      Encoding
		expected string
	}{
		{"UTF-8 passthrough", []byte("feijão"), EncodingUTF8, "feijão"},
		// "açúcar" in Latin-1 bytes
		{"Windows-1252", []byte{'a', 0xE7, 0xFA, 'c', 'a', 'r'}, EncodingWindows1252, "açúcar"},
		{"ISO-8859-1", []byte{'p', 0xE3, 'o'}, EncodingISO88591, "pão"},
		// Valid UTF-8 wins over a wrong hint
		{"Wrong hint on UTF-8", []byte("café"), EncodingWindows1252, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.data, tt.enc)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Decode(%v, %s) = %q, want %q", tt.data, tt.enc, result, tt.expected)
			}
		})
	}
}
