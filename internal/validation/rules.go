// Package validation enforces OSCU message contracts before any network call.
//
// A Contract is a tree of field rules (string, integer, decimal, object, list)
// plus cross-field rules that only run once every field passes. All failures
// of a pass are collected into one model.ValidationError.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/etims-client/internal/decimal"
	"github.com/rezonia/etims-client/internal/model"
)

// Rule names recorded on field errors
const (
	RuleRequired             = "required"
	RuleType                 = "type"
	RuleMinLength            = "min_length"
	RuleMaxLength            = "max_length"
	RulePattern              = "pattern"
	RuleLeadingZeros         = "leading_zeros"
	RuleMin                  = "min"
	RuleMax                  = "max"
	RuleDecimalPlaces        = "decimal_places"
	RuleMaxDigits            = "max_digits"
	RuleMinItems             = "min_items"
	RuleLineTotal            = "line_total"
	RuleDatePrefix           = "date_prefix"
	RuleDateOrder            = "date_order"
	RuleItemCount            = "item_count"
	RuleAggregateSum         = "aggregate_sum"
	RuleComponentSum         = "component_sum"
	RuleConditionalRequired  = "conditional_required"
	RuleConditionalForbidden = "conditional_forbidden"
)

// Rule checks one value at a path. Failures are recorded on errs and the
// normalized value is returned.
type Rule interface {
	Apply(path string, v any, errs *model.ValidationError) any
}

// Field binds a rule to an object key
type Field struct {
	Name       string
	Rule       Rule
	Required   bool
	Default    any
	hasDefault bool
}

// Required declares a mandatory field
func Required(name string, rule Rule) Field {
	return Field{Name: name, Rule: rule, Required: true}
}

// Optional declares a field that may be absent or null
func Optional(name string, rule Rule) Field {
	return Field{Name: name, Rule: rule}
}

// OptionalDefault declares an optional field filled with def when absent
func OptionalDefault(name string, rule Rule, def any) Field {
	return Field{Name: name, Rule: rule, Default: def, hasDefault: true}
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// ObjectRule validates a JSON object field by field. Keys not declared are
// dropped from the normalized output.
type ObjectRule struct {
	Fields []Field
}

// Object creates an object rule
func Object(fields ...Field) *ObjectRule {
	return &ObjectRule{Fields: fields}
}

// Apply implements Rule
func (r *ObjectRule) Apply(path string, v any, errs *model.ValidationError) any {
	m, ok := v.(map[string]any)
	if !ok {
		errs.Add(displayPath(path), RuleType, "must be an object")
		return v
	}

	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		p := childPath(path, f.Name)
		raw, present := m[f.Name]
		switch {
		case !present && f.Required:
			errs.Add(p, RuleRequired, "field required")
		case !present && f.hasDefault:
			out[f.Name] = f.Default
		case !present:
		case raw == nil && f.Required:
			errs.Add(p, RuleRequired, "must not be null")
		case raw == nil:
			out[f.Name] = nil
		default:
			out[f.Name] = f.Rule.Apply(p, raw, errs)
		}
	}
	return out
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

// ListRule validates every element of a JSON array with Item
type ListRule struct {
	Item     Rule
	MinItems int
}

// List creates a list rule
func List(item Rule) *ListRule {
	return &ListRule{Item: item}
}

// Min sets the minimum number of elements
func (r *ListRule) Min(n int) *ListRule {
	r.MinItems = n
	return r
}

// Apply implements Rule
func (r *ListRule) Apply(path string, v any, errs *model.ValidationError) any {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []map[string]any:
		items = make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
	default:
		errs.Add(path, RuleType, "must be a list")
		return v
	}

	if len(items) < r.MinItems {
		errs.Add(path, RuleMinItems, fmt.Sprintf("must contain at least %d items", r.MinItems))
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = r.Item.Apply(fmt.Sprintf("%s[%d]", path, i), item, errs)
	}
	return out
}

// StringRule checks length, pattern and leading zeros. Lengths count runes;
// zero means unbounded.
type StringRule struct {
	MinLen         int
	MaxLen         int
	Pattern        *regexp.Regexp
	NoLeadingZeros bool
}

// Str creates an unconstrained string rule
func Str() *StringRule {
	return &StringRule{}
}

// Len bounds the length; pass 0 for an open end
func (r *StringRule) Len(min, max int) *StringRule {
	r.MinLen = min
	r.MaxLen = max
	return r
}

// Match requires the whole value to match expr
func (r *StringRule) Match(expr string) *StringRule {
	r.Pattern = regexp.MustCompile(expr)
	return r
}

// NoLeading rejects values with leading zeros other than "0" itself
func (r *StringRule) NoLeading() *StringRule {
	r.NoLeadingZeros = true
	return r
}

// Apply implements Rule
func (r *StringRule) Apply(path string, v any, errs *model.ValidationError) any {
	s, ok := v.(string)
	if !ok {
		errs.Add(path, RuleType, "must be a string")
		return v
	}

	n := utf8.RuneCountInString(s)
	if r.MinLen > 0 && n < r.MinLen {
		if r.MinLen == 1 {
			errs.Add(path, RuleMinLength, "must not be empty")
		} else {
			errs.Add(path, RuleMinLength, fmt.Sprintf("must be at least %d characters", r.MinLen))
		}
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		errs.Add(path, RuleMaxLength, fmt.Sprintf("must be at most %d characters", r.MaxLen))
	}
	if r.Pattern != nil && !r.Pattern.MatchString(s) {
		errs.Add(path, RulePattern, fmt.Sprintf("must match pattern %s", r.Pattern.String()))
	}
	if r.NoLeadingZeros && s != "0" && len(s) > 0 && s[0] == '0' {
		errs.Add(path, RuleLeadingZeros, "must not have leading zeros")
	}
	return s
}

// IntRule checks integral numbers. Integral strings are accepted and
// normalized to JSON numbers.
type IntRule struct {
	Min *int64
	Max *int64
}

// Int creates an integer rule bounded to [min, max]
func Int(min, max int64) *IntRule {
	return &IntRule{Min: &min, Max: &max}
}

// IntMin creates an integer rule with only a lower bound
func IntMin(min int64) *IntRule {
	return &IntRule{Min: &min}
}

// Apply implements Rule
func (r *IntRule) Apply(path string, v any, errs *model.ValidationError) any {
	d, err := money.Parse(v)
	if errors.Is(err, money.ErrOutOfRange) {
		errs.Add(path, RuleMaxDigits, fmt.Sprintf("must have no more than %d digits", money.MaxDigits))
		return v
	}
	if err != nil || !d.IsInteger() {
		errs.Add(path, RuleType, "must be an integer")
		return v
	}
	if r.Min != nil && d.LessThan(decimal.NewFromInt(*r.Min)) {
		errs.Add(path, RuleMin, fmt.Sprintf("must be greater than or equal to %d", *r.Min))
	}
	if r.Max != nil && d.GreaterThan(decimal.NewFromInt(*r.Max)) {
		errs.Add(path, RuleMax, fmt.Sprintf("must be less than or equal to %d", *r.Max))
	}
	return json.Number(d.Truncate(0).String())
}

// DecimalRule checks decimal numbers. Places < 0 leaves precision open and
// MaxDigits == 0 leaves size open.
type DecimalRule struct {
	Min          *decimal.Decimal
	Max          *decimal.Decimal
	MinExclusive bool
	MaxDigits    int32
	Places       int32
}

// Dec creates a decimal rule with open precision, capped at money.MaxDigits
// digits in total
func Dec() *DecimalRule {
	return &DecimalRule{Places: -1, MaxDigits: money.MaxDigits}
}

// Amount creates a non-negative decimal with fixed precision
func Amount(maxDigits, places int32) *DecimalRule {
	min := decimal.Zero
	return &DecimalRule{Min: &min, MaxDigits: maxDigits, Places: places}
}

// Rate creates a percentage in [0, 100] with fixed precision
func Rate(maxDigits, places int32) *DecimalRule {
	min := decimal.Zero
	max := decimal.NewFromInt(100)
	return &DecimalRule{Min: &min, Max: &max, MaxDigits: maxDigits, Places: places}
}

// AtLeast sets an inclusive lower bound
func (r *DecimalRule) AtLeast(min string) *DecimalRule {
	d := decimal.RequireFromString(min)
	r.Min = &d
	r.MinExclusive = false
	return r
}

// Above sets an exclusive lower bound
func (r *DecimalRule) Above(min string) *DecimalRule {
	d := decimal.RequireFromString(min)
	r.Min = &d
	r.MinExclusive = true
	return r
}

// Apply implements Rule
func (r *DecimalRule) Apply(path string, v any, errs *model.ValidationError) any {
	d, err := money.Parse(v)
	if errors.Is(err, money.ErrOutOfRange) {
		errs.Add(path, RuleMaxDigits, fmt.Sprintf("must have no more than %d digits", money.MaxDigits))
		return v
	}
	if err != nil {
		errs.Add(path, RuleType, "must be a decimal number")
		return v
	}

	if r.Min != nil {
		if r.MinExclusive && !d.GreaterThan(*r.Min) {
			errs.Add(path, RuleMin, fmt.Sprintf("must be greater than %s", r.Min.String()))
		} else if !r.MinExclusive && d.LessThan(*r.Min) {
			errs.Add(path, RuleMin, fmt.Sprintf("must be greater than or equal to %s", r.Min.String()))
		}
	}
	if r.Max != nil && d.GreaterThan(*r.Max) {
		errs.Add(path, RuleMax, fmt.Sprintf("must be less than or equal to %s", r.Max.String()))
	}

	places := money.Places(d)
	if r.Places >= 0 && places > r.Places {
		errs.Add(path, RuleDecimalPlaces, fmt.Sprintf("must have no more than %d decimal places", r.Places))
	}
	if r.MaxDigits > 0 {
		if r.Places >= 0 {
			if whole := r.MaxDigits - r.Places; money.IntegerDigits(d) > whole {
				errs.Add(path, RuleMaxDigits, fmt.Sprintf("must have no more than %d digits before the decimal point", whole))
			}
		} else if money.IntegerDigits(d)+places > r.MaxDigits {
			errs.Add(path, RuleMaxDigits, fmt.Sprintf("must have no more than %d digits in total", r.MaxDigits))
		}
	}

	return json.Number(money.Canonical(d, r.Places))
}
