package model

import (
	"fmt"
	"strings"
)

// Configuration error kinds
const (
	ConfigKindEndpoint = "endpoint"
	ConfigKindContract = "contract"
	ConfigKindSettings = "settings"
)

// ConfigurationError represents a programmer or deployment mistake
// (unknown endpoint, unknown contract, unusable settings). It is never retried.
type ConfigurationError struct {
	Kind    string
	Name    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("configuration error [%s %q]: %s", e.Kind, e.Name, e.Message)
	}
	return fmt.Sprintf("configuration error [%s]: %s", e.Kind, e.Message)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(kind, name, message string) *ConfigurationError {
	return &ConfigurationError{
		Kind:    kind,
		Name:    name,
		Message: message,
	}
}

// FieldError is a single failing rule at a field path such as itemList[0].totAmt
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every failing rule found in one validation pass
type ValidationError struct {
	Contract string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("validation failed for %s (%d errors): %s",
		e.Contract, len(e.Fields), strings.Join(parts, "; "))
}

// NewValidationError creates an empty error set for a contract
func NewValidationError(contract string) *ValidationError {
	return &ValidationError{Contract: contract}
}

// Add appends a failing rule
func (e *ValidationError) Add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// Len returns the number of failing rules
func (e *ValidationError) Len() int {
	return len(e.Fields)
}

// Has reports whether the field path has at least one failing rule
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Messages returns the messages recorded for a field path, in order
func (e *ValidationError) Messages(field string) []string {
	var out []string
	for _, f := range e.Fields {
		if f.Field == field {
			out = append(out, f.Message)
		}
	}
	return out
}

// Map flattens the set into field path -> message. Several failures on one
// path are joined with "; ".
func (e *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if prev, ok := out[f.Field]; ok {
			out[f.Field] = prev + "; " + f.Message
			continue
		}
		out[f.Field] = f.Message
	}
	return out
}

// AuthenticationError represents a failed credential exchange or a token the
// remote side keeps rejecting after the single refresh.
type AuthenticationError struct {
	Message    string
	StatusCode int
	Body       []byte
	Cause      error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed (status=%d): %s", e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string, status int, body []byte, cause error) *AuthenticationError {
	return &AuthenticationError{
		Message:    message,
		StatusCode: status,
		Body:       body,
		Cause:      cause,
	}
}

// BusinessClass groups non-success result codes
type BusinessClass string

const (
	BusinessClassClient  BusinessClass = "client"
	BusinessClassServer  BusinessClass = "server"
	BusinessClassGeneric BusinessClass = "generic"
)

// BusinessError represents a request the remote service understood and
// rejected. Code, message and body are kept verbatim for audit.
type BusinessError struct {
	Code       string
	Message    string
	Class      BusinessClass
	StatusCode int
	Body       []byte
}

func (e *BusinessError) Error() string {
	label := "Business"
	switch e.Class {
	case BusinessClassClient:
		label = "Client"
	case BusinessClassServer:
		label = "Server"
	}
	return fmt.Sprintf("%s Error (%s): %s", label, e.Code, e.Message)
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, class BusinessClass, status int, body []byte) *BusinessError {
	return &BusinessError{
		Code:       code,
		Message:    message,
		Class:      class,
		StatusCode: status,
		Body:       body,
	}
}

// TransportError represents non-2xx responses without a business code,
// unparseable bodies and network failures including timeouts.
type TransportError struct {
	Message    string
	StatusCode int
	Body       []byte
	Timeout    bool
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error (status=%d): %s (%v)", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error (status=%d): %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new transport error
func NewTransportError(message string, status int, body []byte, cause error) *TransportError {
	return &TransportError{
		Message:    message,
		StatusCode: status,
		Body:       body,
		Cause:      cause,
	}
}
