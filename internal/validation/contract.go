package validation

import (
	"github.com/rezonia/etims-client/internal/model"
)

// Contract is the named, versioned shape of one outbound message
type Contract struct {
	Name        string
	Version     string
	Description string
	Root        *ObjectRule
	Cross       []CrossRule
}

// Validate runs the field pass and, only when it is clean, the cross-field
// pass. The returned payload is normalized: undeclared keys dropped, numbers
// rendered canonically.
func (c *Contract) Validate(payload map[string]any) (map[string]any, *model.ValidationError) {
	errs := model.NewValidationError(c.Name)

	normalized, _ := c.Root.Apply("", payload, errs).(map[string]any)
	if errs.Len() > 0 {
		return nil, errs
	}

	for _, rule := range c.Cross {
		rule.Check(normalized, errs)
	}
	if errs.Len() > 0 {
		return nil, errs
	}
	return normalized, nil
}

// FieldNames lists the top-level keys the contract accepts
func (c *Contract) FieldNames() []string {
	names := make([]string, 0, len(c.Root.Fields))
	for _, f := range c.Root.Fields {
		names = append(names, f.Name)
	}
	return names
}

// RequiredFieldNames lists the top-level keys that must be present
func (c *Contract) RequiredFieldNames() []string {
	var names []string
	for _, f := range c.Root.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
