package decimal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Tolerance is the rounding slack the tax authority allows on computed totals
var Tolerance = decimal.New(1, -2)

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MaxDigits bounds both the integer digits and the fractional scale of any
// parsed value. Larger magnitudes would make shopspring expand the number
// into millions of digits on compare or render.
const MaxDigits = 38

// ErrOutOfRange marks values rejected by CheckBounds
var ErrOutOfRange = errors.New("number out of range")

// Parse converts a decoded JSON value into a decimal. Numbers decoded with
// UseNumber keep their exact text; float64 input goes through its shortest
// representation. Values outside MaxDigits are rejected before any
// arithmetic touches them.
func Parse(v any) (decimal.Decimal, error) {
	d, err := parse(v)
	if err != nil {
		return Zero, err
	}
	return d, CheckBounds(d)
}

// CheckBounds rejects values with more than MaxDigits integer digits or
// fractional places. It only reads the coefficient and exponent.
func CheckBounds(d decimal.Decimal) error {
	if d.Coefficient().Sign() == 0 {
		return nil
	}
	exp := int64(d.Exponent())
	if exp < -MaxDigits {
		return fmt.Errorf("%w: more than %d decimal places", ErrOutOfRange, MaxDigits)
	}
	if int64(d.NumDigits())+exp > MaxDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrOutOfRange, MaxDigits)
	}
	return nil
}

func parse(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case json.Number:
		return FromString(t.String())
	case string:
		if strings.TrimSpace(t) == "" {
			return Zero, fmt.Errorf("empty string is not a number")
		}
		return FromString(t)
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint:
		return FromString(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return FromString(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return FromString(strconv.FormatUint(t, 10))
	case bool, nil:
		return Zero, fmt.Errorf("value %v is not a number", t)
	default:
		return Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// Places returns the number of significant fractional digits (1.50 -> 1)
func Places(d decimal.Decimal) int32 {
	if d.Exponent() >= 0 {
		return 0
	}
	s := d.String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	return int32(len(strings.TrimRight(s[dot+1:], "0")))
}

// IntegerDigits returns the number of digits left of the decimal point
func IntegerDigits(d decimal.Decimal) int32 {
	whole := d.Abs().Truncate(0)
	if whole.IsZero() {
		return 0
	}
	return int32(len(whole.String()))
}

// Canonical renders d with exactly places fractional digits, or in
// shopspring's shortest form when places is negative.
func Canonical(d decimal.Decimal, places int32) string {
	if places < 0 {
		return d.String()
	}
	return d.StringFixed(places)
}

// Equal reports whether a and b differ by at most tol
func Equal(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Mismatch returns |a-b| rendered with two places, for error messages
func Mismatch(a, b decimal.Decimal) string {
	return a.Sub(b).Abs().StringFixed(2)
}

// CalculateLineTotal computes: supply - discount + tax
func CalculateLineTotal(supply, discount, tax decimal.Decimal) decimal.Decimal {
	return supply.Sub(discount).Add(tax)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
