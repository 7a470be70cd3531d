package decimal_test

import (
	"encoding/json"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/decimal"
)

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"json number", json.Number("8068.00"), "8068"},
		{"string", "4034.5", "4034.5"},
		{"float", 81000.0, "81000"},
		{"int", 90, "90"},
		{"int64", int64(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, d.Equal(dec.RequireFromString(tt.expected)), "got %s", d)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	huge := []any{
		json.Number("1e50000000"),
		json.Number("1e-50000000"),
		json.Number("-9.9e39"),
		"123456789012345678901234567890123456789",
		1e300,
		dec.New(1, 40),
	}
	for _, v := range append([]any{nil, true, "", "abc", []int{1}}, huge...) {
		_, err := decimal.Parse(v)
		assert.Error(t, err, "input %#v", v)
	}
}

func TestParse_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"max integer digits", "12345678901234567890123456789012345678"},
		{"max scale", "0.00000000000000000000000000000000000001"},
		{"zero with large exponent", "0e-100"},
		{"exponent inside bound", "1e37"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decimal.Parse(json.Number(tt.input))
			assert.NoError(t, err)
		})
	}
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, int32(0), decimal.Places(dec.RequireFromString("100")))
	assert.Equal(t, int32(0), decimal.Places(dec.RequireFromString("100.00")))
	assert.Equal(t, int32(1), decimal.Places(dec.RequireFromString("1.50")))
	assert.Equal(t, int32(3), decimal.Places(dec.RequireFromString("0.125")))
}

func TestIntegerDigits(t *testing.T) {
	assert.Equal(t, int32(0), decimal.IntegerDigits(dec.RequireFromString("0.5")))
	assert.Equal(t, int32(5), decimal.IntegerDigits(dec.RequireFromString("12102.00")))
	assert.Equal(t, int32(3), decimal.IntegerDigits(dec.RequireFromString("-100.1")))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "8068.00", decimal.Canonical(dec.RequireFromString("8068"), 2))
	assert.Equal(t, "16.00", decimal.Canonical(dec.RequireFromString("16.0"), 2))
	assert.Equal(t, "1.5", decimal.Canonical(dec.RequireFromString("1.50"), -1))
}

func TestEqual(t *testing.T) {
	a := dec.RequireFromString("100.00")
	assert.True(t, decimal.Equal(a, dec.RequireFromString("100.01"), decimal.Tolerance))
	assert.False(t, decimal.Equal(a, dec.RequireFromString("100.02"), decimal.Tolerance))
}

func TestMismatch(t *testing.T) {
	assert.Equal(t, "102.00", decimal.Mismatch(dec.RequireFromString("12000"), dec.RequireFromString("12102")))
}

func TestCalculateLineTotal(t *testing.T) {
	// Total = 1000 - 100 + 144 = 1044
	result := decimal.CalculateLineTotal(dec.NewFromInt(1000), dec.NewFromInt(100), dec.NewFromInt(144))
	assert.True(t, result.Equal(dec.NewFromInt(1044)))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.RequireFromString("8068.00"),
		dec.RequireFromString("4034.00"),
	}
	assert.True(t, decimal.Sum(values).Equal(dec.RequireFromString("12102")))
}

func TestSum_Empty(t *testing.T) {
	result := decimal.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}
