package priceseries

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestInterpolateGaps(t *testing.T) {
	tests := []struct {
		name     string
		input    []*float64
		expected []*float64
	}{
		{
			name:     "Both sides present",
			input:    []*float64{fp(5), nil, nil, fp(11)},
			expected: []*float64{fp(5), fp(7), fp(9), fp(11)},
		},
		{
			name:     "Leading run carries backward",
			input:    []*float64{nil, nil, fp(8), fp(12)},
			expected: []*float64{fp(8), fp(8), fp(8), fp(12)},
		},
		{
			name:     "Trailing run carries forward",
			input:    []*float64{fp(8), fp(12), nil, nil},
			expected: []*float64{fp(8), fp(12), fp(12), fp(12)},
		},
		{
			name:     "All nil stays nil",
			input:    []*float64{nil, nil, nil, nil},
			expected: []*float64{nil, nil, nil, nil},
		},
		{
			name:     "No gaps passes through",
			input:    []*float64{fp(1), fp(2), fp(3)},
			expected: []*float64{fp(1), fp(2), fp(3)},
		},
		{
			name:     "Single interior gap",
			input:    []*float64{fp(10), nil, fp(20)},
			expected: []*float64{fp(10), fp(15), fp(20)},
		},
		{
			name:     "Multiple runs",
			input:    []*float64{nil, fp(4), nil, nil, fp(10), nil},
			expected: []*float64{fp(4), fp(4), fp(6), fp(8), fp(10), fp(10)},
		},
		{
			name:     "Empty input",
			input:    []*float64{},
			expected: []*float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InterpolateGaps(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("length = %d, want %d", len(result), len(tt.expected))
			}
			for i := range result {
				switch {
				case result[i] == nil && tt.expected[i] == nil:
				case result[i] == nil || tt.expected[i] == nil:
					t.Errorf("index %d = %v, want %v", i, result[i], tt.expected[i])
				case *result[i] != *tt.expected[i]:
					t.Errorf("index %d = %v, want %v", i, *result[i], *tt.expected[i])
				}
			}
		})
	}
}

func TestInterpolateGapsDoesNotMutateInput(t *testing.T) {
	input := []*float64{fp(5), nil, fp(11)}
	_ = InterpolateGaps(input)
	if input[1] != nil {
		t.Errorf("input slice was mutated: index 1 = %v, want nil", *input[1])
	}
}
