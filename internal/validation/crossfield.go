package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/etims-client/internal/decimal"
	"github.com/rezonia/etims-client/internal/model"
)

// CrossRule checks relationships between fields of a payload that already
// passed every field rule, so values are normalized.
type CrossRule interface {
	Check(payload map[string]any, errs *model.ValidationError)
}

// CrossRuleFunc adapts a function to CrossRule
type CrossRuleFunc func(payload map[string]any, errs *model.ValidationError)

// Check implements CrossRule
func (f CrossRuleFunc) Check(payload map[string]any, errs *model.ValidationError) {
	f(payload, errs)
}

func decimalAt(m map[string]any, key string) (decimal.Decimal, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return money.Zero, false
	}
	d, err := money.Parse(v)
	if err != nil {
		return money.Zero, false
	}
	return d, true
}

func stringAt(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func objectsAt(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// LineTotal requires Total == Supply - Discount + Tax on every element of
// List, within Tolerance. A missing discount counts as zero.
type LineTotal struct {
	List      string
	Total     string
	Supply    string
	Discount  string
	Tax       string
	Tolerance decimal.Decimal
}

// Check implements CrossRule
func (r LineTotal) Check(payload map[string]any, errs *model.ValidationError) {
	for i, item := range objectsAt(payload, r.List) {
		supply, _ := decimalAt(item, r.Supply)
		discount, _ := decimalAt(item, r.Discount)
		tax, _ := decimalAt(item, r.Tax)
		total, ok := decimalAt(item, r.Total)
		if !ok {
			continue
		}

		expected := money.CalculateLineTotal(supply, discount, tax)
		if money.Equal(total, expected, r.Tolerance) {
			continue
		}
		errs.Add(fmt.Sprintf("%s[%d].%s", r.List, i, r.Total), RuleLineTotal, fmt.Sprintf(
			"item total mismatch: %s(%s) - %s(%s) + %s(%s) = %s, but %s is %s (mismatch of %s)",
			r.Supply, supply.StringFixed(2), r.Discount, discount.StringFixed(2), r.Tax, tax.StringFixed(2),
			expected.StringFixed(2), r.Total, total.StringFixed(2), money.Mismatch(total, expected)))
	}
}

// DatePrefix requires the first Length characters of Field to equal Ref.
// Used to keep a confirmation timestamp on the sale date.
type DatePrefix struct {
	Field  string
	Ref    string
	Length int
}

// Check implements CrossRule
func (r DatePrefix) Check(payload map[string]any, errs *model.ValidationError) {
	val, ok := stringAt(payload, r.Field)
	if !ok {
		return
	}
	ref, ok := stringAt(payload, r.Ref)
	if !ok {
		return
	}
	if prefix(val, r.Length) != prefix(ref, r.Length) {
		errs.Add(r.Field, RuleDatePrefix,
			fmt.Sprintf("%s (%s) must start with %s (%s)", r.Field, val, r.Ref, ref))
	}
}

// NotBefore requires every present field in Fields to not precede Ref when
// both are compared on their first Length characters.
type NotBefore struct {
	Fields []string
	Ref    string
	Length int
}

// Check implements CrossRule
func (r NotBefore) Check(payload map[string]any, errs *model.ValidationError) {
	ref, ok := stringAt(payload, r.Ref)
	if !ok {
		return
	}
	refDay := prefix(ref, r.Length)
	for _, field := range r.Fields {
		val, ok := stringAt(payload, field)
		if !ok {
			continue
		}
		if prefix(val, r.Length) < refDay {
			errs.Add(field, RuleDateOrder,
				fmt.Sprintf("%s (%s) cannot be before %s (%s)", field, val, r.Ref, ref))
		}
	}
}

// ItemCount requires List to be non-empty and Count to equal its length
type ItemCount struct {
	Count string
	List  string
}

// Check implements CrossRule
func (r ItemCount) Check(payload map[string]any, errs *model.ValidationError) {
	items, _ := payload[r.List].([]any)
	if len(items) == 0 {
		errs.Add(r.List, RuleItemCount, fmt.Sprintf("%s cannot be empty", r.List))
		return
	}
	count, ok := decimalAt(payload, r.Count)
	if !ok {
		return
	}
	if !count.Equal(decimal.NewFromInt(int64(len(items)))) {
		errs.Add(r.Count, RuleItemCount, fmt.Sprintf("%s (%s) must match actual %s length (%d)",
			r.Count, count.String(), r.List, len(items)))
	}
}

// AggregateSum requires header field Target to equal the sum of Item over
// every element of List. An empty list is left to ItemCount.
type AggregateSum struct {
	Target    string
	List      string
	Item      string
	Tolerance decimal.Decimal
}

// Check implements CrossRule
func (r AggregateSum) Check(payload map[string]any, errs *model.ValidationError) {
	items := objectsAt(payload, r.List)
	if len(items) == 0 {
		return
	}
	header, ok := decimalAt(payload, r.Target)
	if !ok {
		return
	}

	values := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		d, _ := decimalAt(item, r.Item)
		values = append(values, d)
	}
	sum := money.Sum(values)
	if money.Equal(header, sum, r.Tolerance) {
		return
	}
	errs.Add(r.Target, RuleAggregateSum, fmt.Sprintf(
		"header %s (%s) does not equal sum of item %s (%s): mismatch of %s",
		r.Target, header.StringFixed(2), r.Item, sum.StringFixed(2), money.Mismatch(header, sum)))
}

// ComponentSum requires Target to equal the sum of the Components fields
type ComponentSum struct {
	Target     string
	Components []string
	Label      string
	Tolerance  decimal.Decimal
}

// Check implements CrossRule
func (r ComponentSum) Check(payload map[string]any, errs *model.ValidationError) {
	target, ok := decimalAt(payload, r.Target)
	if !ok {
		return
	}
	values := make([]decimal.Decimal, 0, len(r.Components))
	for _, c := range r.Components {
		d, _ := decimalAt(payload, c)
		values = append(values, d)
	}
	sum := money.Sum(values)
	if money.Equal(target, sum, r.Tolerance) {
		return
	}

	label := r.Label
	if label == "" {
		label = strings.Join(r.Components, "+")
	}
	errs.Add(r.Target, RuleComponentSum, fmt.Sprintf(
		"sum of %s (%s) must equal %s (%s): mismatch of %s",
		label, sum.StringFixed(2), r.Target, target.StringFixed(2), money.Mismatch(target, sum)))
}

// ConditionalPresence makes Fields required while Selector holds one of
// Values and forbidden otherwise.
type ConditionalPresence struct {
	Selector string
	Values   []string
	Fields   []string
	State    string
}

// Check implements CrossRule
func (r ConditionalPresence) Check(payload map[string]any, errs *model.ValidationError) {
	sel, _ := stringAt(payload, r.Selector)
	active := false
	for _, v := range r.Values {
		if sel == v {
			active = true
			break
		}
	}

	for _, field := range r.Fields {
		v, present := payload[field]
		present = present && v != nil
		switch {
		case active && !present:
			errs.Add(field, RuleConditionalRequired,
				fmt.Sprintf("%s is required when %s indicates %s status", field, r.Selector, r.State))
		case !active && present:
			errs.Add(field, RuleConditionalForbidden,
				fmt.Sprintf("%s is only allowed when %s indicates %s status", field, r.Selector, r.State))
		}
	}
}
