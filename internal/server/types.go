package server

import (
	"errors"
	"time"

	"github.com/rezonia/etims-client/internal/model"
)

// ContractInfo describes a registered validation contract
type ContractInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
	Required    []string `json:"required"`
}

// EndpointInfo describes one resolved endpoint
type EndpointInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Contract  string `json:"contract,omitempty"`
	Bootstrap bool   `json:"bootstrap,omitempty"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid   bool           `json:"valid"`
	Payload map[string]any `json:"payload"`
}

// OperationResponse wraps the outcome of a dispatched call
type OperationResponse struct {
	Outcome *model.Outcome `json:"outcome"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// TokenResponse never carries the token itself
type TokenResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string             `json:"error"`
	Code     string             `json:"code,omitempty"`
	Category string             `json:"category,omitempty"`
	Status   int                `json:"status,omitempty"`
	Details  string             `json:"details,omitempty"`
	Fields   []model.FieldError `json:"fields,omitempty"`
}

func newErrorResponse(err error) *ErrorResponse {
	rich := model.ToServiceError(err)
	resp := &ErrorResponse{
		Error:    err.Error(),
		Code:     rich.TextCode,
		Category: string(rich.Category),
		Status:   rich.Code,
	}

	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		resp.Fields = valErr.Fields
	}
	return resp
}
