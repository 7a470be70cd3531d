package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/validation"
)

func apply(rule validation.Rule, v any) (any, *model.ValidationError) {
	errs := model.NewValidationError("test")
	out := rule.Apply("field", v, errs)
	return out, errs
}

func TestStringRule(t *testing.T) {
	tests := []struct {
		name     string
		rule     validation.Rule
		input    any
		wantRule string
	}{
		{"not a string", validation.Str(), json.Number("1"), validation.RuleType},
		{"empty", validation.NonEmpty(), "", validation.RuleMinLength},
		{"too long", validation.Text(0, 3), "abcd", validation.RuleMaxLength},
		{"pattern", validation.YesNo(), "y", validation.RulePattern},
		{"branch length", validation.BranchID(), "001", validation.RuleMaxLength},
		{"code lowercase", validation.Code5(), "ab", validation.RulePattern},
		{"leading zeros", validation.InvoiceNo(), "0012", validation.RuleLeadingZeros},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := apply(tt.rule, tt.input)
			require.Equal(t, 1, errs.Len(), "errors: %v", errs.Fields)
			assert.Equal(t, tt.wantRule, errs.Fields[0].Rule)
			assert.Equal(t, "field", errs.Fields[0].Field)
		})
	}
}

func TestStringRule_CountsRunes(t *testing.T) {
	_, errs := apply(validation.Text(1, 3), "ñañ")
	assert.Equal(t, 0, errs.Len())
}

func TestIntRule(t *testing.T) {
	out, errs := apply(validation.Int(1, 999), "42")
	assert.Equal(t, 0, errs.Len())
	assert.Equal(t, json.Number("42"), out)

	_, errs = apply(validation.Int(1, 999), json.Number("1.5"))
	assert.True(t, errs.Has("field"))

	_, errs = apply(validation.Int(1, 999), true)
	assert.True(t, errs.Has("field"))

	_, errs = apply(validation.Int(1, 999), 1000)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, validation.RuleMax, errs.Fields[0].Rule)
}

func TestDecimalRule(t *testing.T) {
	tests := []struct {
		name     string
		rule     validation.Rule
		input    any
		expected json.Number
		failRule string
	}{
		{"amount normalized", validation.Amount18(), json.Number("8068"), "8068.00", ""},
		{"amount from string", validation.Amount18(), "4034.5", "4034.50", ""},
		{"trailing zeros allowed", validation.Amount18(), json.Number("1.500"), "1.50", ""},
		{"negative amount", validation.Amount18(), json.Number("-1"), "", validation.RuleMin},
		{"too many places", validation.Amount18(), json.Number("1.005"), "", validation.RuleDecimalPlaces},
		{"too many digits", validation.Amount13(), json.Number("12345678901234"), "", validation.RuleMaxDigits},
		{"rate above 100", validation.TaxRate(), json.Number("100.01"), "", validation.RuleMax},
		{"not a number", validation.Amount18(), "abc", "", validation.RuleType},
		{"unconstrained keeps form", validation.Dec(), json.Number("-3.140"), "-3.14", ""},
		{"unconstrained huge exponent", validation.Dec(), json.Number("1e50000000"), "", validation.RuleMaxDigits},
		{"unconstrained tiny exponent", validation.Dec(), json.Number("1e-50000000"), "", validation.RuleMaxDigits},
		{"unconstrained digit cap", validation.Dec(), json.Number("1234567890123456789012345678901234567.89"), "", validation.RuleMaxDigits},
		{"amount huge exponent", validation.Amount18(), json.Number("9e999999"), "", validation.RuleMaxDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errs := apply(tt.rule, tt.input)
			if tt.failRule == "" {
				require.Equal(t, 0, errs.Len(), "errors: %v", errs.Fields)
				assert.Equal(t, tt.expected, out)
				return
			}
			require.GreaterOrEqual(t, errs.Len(), 1)
			assert.Equal(t, tt.failRule, errs.Fields[0].Rule)
		})
	}
}

func TestObjectRule(t *testing.T) {
	rule := validation.Object(
		validation.Required("name", validation.NonEmpty()),
		validation.Optional("note", validation.Str()),
		validation.OptionalDefault("flag", validation.YesNo(), "N"),
	)

	out, errs := apply(rule, map[string]any{"name": "x", "extra": 1})
	require.Equal(t, 0, errs.Len())
	assert.Equal(t, map[string]any{"name": "x", "flag": "N"}, out)

	_, errs = apply(rule, map[string]any{"name": nil})
	assert.Equal(t, []string{"must not be null"}, errs.Messages("field.name"))

	_, errs = apply(rule, "not an object")
	assert.True(t, errs.Has("field"))
}

func TestListRule(t *testing.T) {
	rule := validation.List(validation.Object(
		validation.Required("qty", validation.Amount13()),
	)).Min(1)

	_, errs := apply(rule, []any{})
	assert.True(t, errs.Has("field"))

	_, errs = apply(rule, []any{
		map[string]any{"qty": 1},
		map[string]any{"qty": -1},
	})
	assert.True(t, errs.Has("field[1].qty"))
	assert.False(t, errs.Has("field[0].qty"))

	out, errs := apply(rule, []map[string]any{{"qty": 2}})
	require.Equal(t, 0, errs.Len())
	assert.Equal(t, []any{map[string]any{"qty": json.Number("2.00")}}, out)
}

func TestRegistry(t *testing.T) {
	registry := validation.DefaultRegistry()

	assert.Equal(t, []string{validation.VersionLegacy, validation.VersionCurrent}, registry.Versions())
	names := registry.Names("")
	assert.Len(t, names, 13)
	assert.Contains(t, names, validation.ContractSales)

	c, err := registry.Lookup("", validation.ContractSales)
	require.NoError(t, err)
	assert.Equal(t, validation.VersionCurrent, c.Version)
	assert.Contains(t, c.RequiredFieldNames(), "itemList")
	assert.Contains(t, c.FieldNames(), "remark")

	err = registry.Register(c)
	assert.Error(t, err, "a name registers once per version")

	_, err = registry.Lookup("9", validation.ContractSales)
	assert.Error(t, err)
}
