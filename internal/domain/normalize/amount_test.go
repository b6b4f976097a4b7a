package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"123.45", "123.45", true},
		{"$1,234.56", "1234.56", true},
		{" $ 12.00 ", "12", true},
		{"-45.10", "-45.1", true},
		{"($45.10)", "-45.1", true},
		{"45.10-", "-45.1", true},
		{"45.10)", "-45.1", true},
		{".99", "0.99", true},
		{"1000000.00", "1000000", true},
		{"-1000000.00", "-1000000", true},
		{"1000000.01", "", false},
		{"$2,000,000", "", false},
		{"12.3.4", "", false},
		{"abc", "", false},
		{"$", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParsePositiveAmount(t *testing.T) {
	_, ok := ParsePositiveAmount("-5.00")
	assert.False(t, ok)

	_, ok = ParsePositiveAmount("0.00")
	assert.False(t, ok)

	v, ok := ParsePositiveAmount("$5.00")
	assert.True(t, ok)
	assert.Equal(t, "5.00", v.StringFixed(2))
}
