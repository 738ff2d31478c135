package paypal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"1 000,00", "1000.00"},
		{"100", "100.00"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1,234,567", "1234567.00"},
		{"1 465,5", "1465.50"},
		{" 12,50 ", "12.50"},
		{"10,000", "10000.00"},
		{"1.000", "1000.00"},
		{"1,234", "1234.00"},
		{"1,000.00", "1000.00"},
		{"10.50", "10.50"},
		{"1.234.567,89", "1234567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAmount_Idempotent(t *testing.T) {
	once, err := NormalizeAmount("1 234,56")
	require.NoError(t, err)
	twice, err := NormalizeAmount(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-5", "12,345.6.7x", "10.5555", "10.500.5", "1.234,567", "12,34,567", "1234,567.00", "10.", ".5,5"} {
		_, err := NormalizeAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestGatewayCurrency(t *testing.T) {
	assert.Equal(t, "USD", GatewayCurrency("Rs"))
	assert.Equal(t, "USD", GatewayCurrency("MUR"))
	assert.Equal(t, "EUR", GatewayCurrency("eur"))
	assert.Equal(t, "USD", GatewayCurrency("USD"))
}
